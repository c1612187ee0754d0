package models

import "time"

// Draft is a persisted snapshot of one conversation.
type Draft struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TeamName  string    `json:"team_name"`
	UserInput string    `json:"user_input"`
	Stage     Stage     `json:"stage"`
	// Questions are the questions of the current clarification round.
	Questions []string `json:"questions"`
	// Answers holds every submitted round, oldest first.
	Answers []QA `json:"answers"`
	// PendingAnswers prefills the current round after navigating back.
	PendingAnswers []string     `json:"pending_answers"`
	Round          int          `json:"round"`
	Result         *ModelResult `json:"result"`
}

// Title returns the ticket title for ready drafts, the first line of the
// request otherwise.
func (d Draft) Title() string {
	if d.Result != nil && d.Result.IsReady() && d.Result.Title != "" {
		return d.Result.Title
	}
	return firstLine(d.UserInput)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
