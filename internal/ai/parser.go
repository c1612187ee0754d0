package ai

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/thomas-vilte/ticketmate/internal/models"
)

var (
	leadingFence  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// ResponseParser turns raw model output into a ModelResult. It never fails:
// output that is not the expected JSON still becomes a readable ticket.
type ResponseParser struct {
	fallbackTitle string
}

func NewResponseParser(fallbackTitle string) *ResponseParser {
	if fallbackTitle == "" {
		fallbackTitle = FallbackTitle("en")
	}
	return &ResponseParser{fallbackTitle: fallbackTitle}
}

// ParseResponse parses with the English fallback title.
func ParseResponse(raw string) models.ModelResult {
	return NewResponseParser("").Parse(raw)
}

func (p *ResponseParser) Parse(raw string) models.ModelResult {
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		return models.NewReadyResult(p.fallbackTitle, raw, nil)
	}
	return p.build(obj)
}

// JSONObject is a decoded JSON object that keeps its source text.
type JSONObject struct {
	Fields map[string]json.RawMessage
	Source []byte
}

// ExtractJSONObject finds the JSON object in a model reply: the whole
// text after stripping a markdown fence, or else the span from the first
// '{' to the last '}'. Top-level values other than objects are rejected.
func ExtractJSONObject(raw string) (JSONObject, bool) {
	text := StripCodeFence(raw)

	if obj, ok := decodeObject(text); ok {
		return obj, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if obj, ok := decodeObject(text[start : end+1]); ok {
			return obj, true
		}
	}

	return JSONObject{}, false
}

// StripCodeFence trims the text and removes a surrounding ``` or ```json fence.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = leadingFence.ReplaceAllString(text, "")
		text = trailingFence.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
	}
	return text
}

func decodeObject(text string) (JSONObject, bool) {
	src := []byte(strings.TrimSpace(text))
	if len(src) == 0 || src[0] != '{' {
		return JSONObject{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(src, &fields); err != nil {
		return JSONObject{}, false
	}
	return JSONObject{Fields: fields, Source: src}, true
}

func (p *ResponseParser) build(obj JSONObject) models.ModelResult {
	switch obj.String("status") {
	case string(models.StatusReady):
		return models.NewReadyResult(
			obj.String("task_title"),
			obj.String("task_text"),
			obj.params("jira_params"),
		)
	case string(models.StatusNeedClarification):
		return models.NewClarificationResult(obj.questions("questions"))
	}

	title := p.fallbackTitle
	if obj.Has("task_title") {
		title = obj.String("task_title")
	}
	body := obj.dump()
	if obj.Has("task_text") {
		body = obj.String("task_text")
	}
	return models.NewReadyResult(title, body, obj.params("jira_params"))
}

// Has reports whether key is present with a non-null value.
func (o JSONObject) Has(key string) bool {
	v, ok := o.Fields[key]
	return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// String returns the field as display text; missing fields are "".
func (o JSONObject) String(key string) string {
	v, ok := o.Fields[key]
	if !ok {
		return ""
	}
	return models.Stringify(v)
}

func (o JSONObject) params(key string) models.TicketParams {
	params := models.TicketParams{}
	v, ok := o.Fields[key]
	if !ok {
		return params
	}
	if err := json.Unmarshal(v, &params); err != nil || params == nil {
		return models.TicketParams{}
	}
	return params
}

// questions accepts a list (blank entries dropped) or a single string.
func (o JSONObject) questions(key string) []string {
	out := []string{}
	v, ok := o.Fields[key]
	if !ok {
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		if q := strings.TrimSpace(models.Stringify(v)); q != "" && !strings.HasPrefix(q, "{") {
			out = append(out, q)
		}
		return out
	}
	for _, item := range items {
		if q := strings.TrimSpace(models.Stringify(item)); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func (o JSONObject) dump() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, o.Source, "", "  "); err != nil {
		return string(o.Source)
	}
	return buf.String()
}
