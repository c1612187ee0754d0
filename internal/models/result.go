package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ResultStatus tags the variant held by a ModelResult.
type ResultStatus string

const (
	StatusReady             ResultStatus = "ready"
	StatusNeedClarification ResultStatus = "need_clarification"
)

// ModelResult is the normalized outcome of one model call. When Status is
// StatusReady, Title, Body and Params are set; when it is
// StatusNeedClarification only Questions is.
type ModelResult struct {
	Status    ResultStatus `json:"status"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	Params    TicketParams `json:"params"`
	Questions []string     `json:"questions"`
}

func NewReadyResult(title, body string, params TicketParams) ModelResult {
	if params == nil {
		params = TicketParams{}
	}
	return ModelResult{Status: StatusReady, Title: title, Body: body, Params: params}
}

func NewClarificationResult(questions []string) ModelResult {
	if questions == nil {
		questions = []string{}
	}
	return ModelResult{Status: StatusNeedClarification, Questions: questions}
}

func (r ModelResult) IsReady() bool {
	return r.Status == StatusReady
}

// TicketParams is structured metadata the model attaches to a finished
// ticket (project, issue type, priority, labels...).
type TicketParams map[string]ParamValue

// String returns the value under key, joining lists with ", ".
func (p TicketParams) String(key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	if v.IsList {
		return strings.Join(v.Items, ", ")
	}
	return v.Text
}

// List returns the value under key as a list. A plain string is split on
// commas so "backend, auth" and ["backend","auth"] read the same.
func (p TicketParams) List(key string) []string {
	v, ok := p[key]
	if !ok {
		return nil
	}
	if v.IsList {
		return v.Items
	}
	var out []string
	for _, item := range strings.Split(v.Text, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParamValue is either a string or a list of strings.
type ParamValue struct {
	Text   string
	Items  []string
	IsList bool
}

func StringValue(s string) ParamValue {
	return ParamValue{Text: s}
}

func ListValue(items ...string) ParamValue {
	if items == nil {
		items = []string{}
	}
	return ParamValue{Items: items, IsList: true}
}

func (v ParamValue) MarshalJSON() ([]byte, error) {
	if v.IsList {
		items := v.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts any JSON value. Arrays become lists; every other
// value, and every array element, is reduced to a string.
func (v *ParamValue) UnmarshalJSON(data []byte) error {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err == nil && elems != nil {
		items := make([]string, 0, len(elems))
		for _, e := range elems {
			items = append(items, Stringify(e))
		}
		*v = ParamValue{Items: items, IsList: true}
		return nil
	}

	*v = ParamValue{Text: Stringify(raw)}
	return nil
}

// Stringify renders a JSON value as display text: strings unquoted,
// null as empty, anything else as compact JSON.
func Stringify(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
