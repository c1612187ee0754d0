package models

// Stage is the position of a conversation in the Input/Clarification/Ready flow.
type Stage string

const (
	StageInput         Stage = "input"
	StageClarification Stage = "clarification"
	StageReady         Stage = "ready"
)

func (s Stage) Valid() bool {
	switch s {
	case StageInput, StageClarification, StageReady:
		return true
	}
	return false
}

// QA is one clarifying question with the user's answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ConversationRequest is what gets sent to the model on each call: the
// original request plus every answer collected so far.
type ConversationRequest struct {
	UserText string
	Answers  []QA
}
