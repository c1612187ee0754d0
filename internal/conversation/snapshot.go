package conversation

import (
	"fmt"
	"strings"

	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/models"
)

// Snapshot captures the conversation as a draft record.
func (o *Orchestrator) Snapshot() models.Draft {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.state
	draft := models.Draft{
		ID:             s.id,
		CreatedAt:      s.createdAt,
		UpdatedAt:      o.now(),
		TeamName:       s.team.Name,
		UserInput:      s.text,
		Stage:          s.stage,
		Questions:      append([]string(nil), s.questions...),
		Answers:        append([]models.QA(nil), s.answers...),
		PendingAnswers: append([]string(nil), s.pending...),
		Round:          s.round,
	}
	if s.result != nil {
		r := *s.result
		draft.Result = &r
	}
	return draft
}

// SetPendingAnswers records answers typed so far in the open round so the
// next Snapshot keeps them. Entries beyond len(answers) keep their previous
// value.
func (o *Orchestrator) SetPendingAnswers(answers []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy {
		return apperrors.ErrBusy
	}
	if o.state.stage != models.StageClarification {
		return apperrors.ErrWrongStage.WithContext("stage", string(o.state.stage))
	}
	if len(answers) > len(o.state.questions) {
		return apperrors.ErrAnswerCount.WithContext("detail",
			fmt.Sprintf("%d answers for %d questions", len(answers), len(o.state.questions)))
	}

	pending := make([]string, len(o.state.questions))
	copy(pending, o.state.pending)
	for i, a := range answers {
		pending[i] = strings.TrimSpace(a)
	}
	o.state.pending = pending
	return nil
}

// Restore replaces the conversation state with the one recorded in draft.
func (o *Orchestrator) Restore(draft models.Draft, team models.TeamProfile) error {
	if err := validateDraft(draft); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy {
		return apperrors.ErrBusy
	}

	s := state{
		id:        draft.ID,
		createdAt: draft.CreatedAt,
		team:      team,
		text:      draft.UserInput,
		stage:     draft.Stage,
		questions: append([]string(nil), draft.Questions...),
		answers:   append([]models.QA(nil), draft.Answers...),
		pending:   append([]string(nil), draft.PendingAnswers...),
		round:     draft.Round,
	}
	if s.id == "" {
		s.id = o.newID()
	}
	if draft.Result != nil {
		r := *draft.Result
		s.result = &r
	}
	o.state = s
	return nil
}

func validateDraft(d models.Draft) error {
	invalid := func(format string, args ...any) error {
		return apperrors.ErrStorageRead.WithContext("detail", fmt.Sprintf("draft %s: ", d.ID)+fmt.Sprintf(format, args...))
	}

	if !d.Stage.Valid() {
		return invalid("unknown stage %q", d.Stage)
	}
	switch d.Stage {
	case models.StageClarification:
		if len(d.Questions) == 0 {
			return invalid("clarification stage without questions")
		}
	case models.StageReady:
		if d.Result == nil || !d.Result.IsReady() {
			return invalid("ready stage without a ticket")
		}
	}
	return nil
}
