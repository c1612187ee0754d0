package jira

import (
	"strings"

	"github.com/thomas-vilte/ticketmate/internal/models"
)

// IssueRequestFromResult maps a ready ticket to a tracker request. Values
// suggested by the model win over team defaults, except that placeholder
// choices like "Story/Bug/Task" fall back to the default.
func IssueRequestFromResult(result models.ModelResult, team models.TeamProfile) models.IssueRequest {
	params := result.Params

	project := strings.ToUpper(pick(params.String("project"), team.JiraProject))
	if team.JiraProject != "" && !validKey(project) {
		project = team.JiraProject
	}

	return models.IssueRequest{
		ProjectKey: project,
		Title:      strings.TrimSpace(result.Title),
		Body:       result.Body,
		IssueType:  pick(params.String("type"), team.DefaultIssueType, "Story"),
		Priority:   pick(params.String("priority")),
		Labels:     labels(params.List("labels")),
	}
}

func pick(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !strings.Contains(v, "/") {
			return v
		}
	}
	return ""
}

func validKey(key string) bool {
	if key == "" || key[0] < 'A' || key[0] > 'Z' {
		return false
	}
	for _, r := range key {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

// labels drops blanks and replaces spaces, which Jira rejects in labels.
func labels(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.Join(strings.Fields(item), "-")
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
