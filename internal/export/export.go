// Package export renders finished tickets for copy and paste.
package export

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", apperrors.NewAppError(apperrors.TypeValidation, "Unknown export format", nil).
		WithContext("detail", fmt.Sprintf("%q (use md or html)", s))
}

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func converter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		)
	})
	return markdown
}

// Render exports a ready draft in the given format.
func Render(draft models.Draft, format Format) ([]byte, error) {
	if draft.Result == nil || !draft.Result.IsReady() {
		return nil, apperrors.ErrDraftNotReady.WithContext("draft", draft.ID)
	}

	md := Markdown(*draft.Result)
	switch format {
	case FormatHTML:
		return HTML(draft.Result.Title, md)
	default:
		return []byte(md), nil
	}
}

// Markdown lays out the ticket: title heading, metadata list, then body.
func Markdown(result models.ModelResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", result.Title)

	keys := make([]string, 0, len(result.Params))
	for key := range result.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if value := result.Params.String(key); value != "" {
			fmt.Fprintf(&sb, "- **%s:** %s\n", key, value)
		}
	}
	if len(keys) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString(strings.TrimSpace(result.Body))
	sb.WriteString("\n")
	return sb.String()
}

// HTML converts markdown into a standalone HTML page.
func HTML(title, md string) ([]byte, error) {
	var body bytes.Buffer
	if err := converter().Convert([]byte(md), &body); err != nil {
		return nil, apperrors.ErrInternal.WithError(fmt.Errorf("markdown conversion failed: %w", err))
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
