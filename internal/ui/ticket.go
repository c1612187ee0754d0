package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/thomas-vilte/ticketmate/internal/i18n"
	"github.com/thomas-vilte/ticketmate/internal/models"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	paramStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// RenderTicket draws a ready ticket as a bordered card.
func RenderTicket(result models.ModelResult) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(result.Title))
	sb.WriteString("\n")

	keys := make([]string, 0, len(result.Params))
	for key := range result.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if value := result.Params.String(key); value != "" {
			sb.WriteString(paramStyle.Render(fmt.Sprintf("%s: %s", key, value)))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(strings.TrimSpace(result.Body))
	return cardStyle.Render(sb.String())
}

func PrintTicket(w io.Writer, result models.ModelResult) {
	_, _ = fmt.Fprintln(w, RenderTicket(result))
}

// PrintQuestions lists the clarifying questions of the current round,
// numbered from 1, with any prefilled answers.
func PrintQuestions(w io.Writer, questions, pending []string, t *i18n.Translations) {
	PrintSectionBanner(w, t.GetMessage("new.clarification_header", len(questions), map[string]interface{}{"Count": len(questions)}))
	for i, q := range questions {
		_, _ = fmt.Fprintf(w, "%s %s\n", Accent.Sprintf("%d.", i+1), q)
		if i < len(pending) && pending[i] != "" {
			_, _ = fmt.Fprintf(w, "   %s\n", Dim.Sprint(t.GetMessage("new.previous_answer", 0, map[string]interface{}{"Answer": pending[i]})))
		}
	}
	_, _ = fmt.Fprintln(w)
}

// PrintDraftRow prints one line of the drafts list.
func PrintDraftRow(w io.Writer, d models.Draft) {
	stage := Dim.Sprint(string(d.Stage))
	if d.Stage == models.StageReady {
		stage = Success.Sprint(string(d.Stage))
	}
	team := d.TeamName
	if team == "" {
		team = "-"
	}
	_, _ = fmt.Fprintf(w, "%s  %-13s  %-12s  %s  %s\n",
		Info.Sprint(shortID(d.ID)), stage, team, Dim.Sprint(d.UpdatedAt.Local().Format("2006-01-02 15:04")), d.Title())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
