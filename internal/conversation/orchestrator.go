// Package conversation drives one ticket conversation through the
// input, clarification and ready stages.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/logger"
	"github.com/thomas-vilte/ticketmate/internal/models"
)

// Generator runs one model round. *ai.Router satisfies it.
type Generator interface {
	Generate(ctx context.Context, team models.TeamProfile, req models.ConversationRequest) (models.ModelResult, error)
}

type Option func(*Orchestrator)

// WithMaxRounds caps the number of clarification rounds. Zero means no cap.
func WithMaxRounds(n int) Option {
	return func(o *Orchestrator) { o.maxRounds = n }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// Orchestrator owns the state of a single conversation. Transitions are
// all-or-nothing: a failed model call or a protocol violation leaves the
// state exactly as it was. Only one model call may be outstanding.
type Orchestrator struct {
	generator Generator
	maxRounds int
	now       func() time.Time
	newID     func() string

	mu    sync.Mutex
	busy  bool
	state state
}

type state struct {
	id        string
	createdAt time.Time
	team      models.TeamProfile
	text      string
	stage     models.Stage
	questions []string
	answers   []models.QA
	pending   []string
	round     int
	result    *models.ModelResult
}

func NewOrchestrator(generator Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		generator: generator,
		now:       func() time.Time { return time.Now().UTC().Round(0) },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.state = state{id: o.newID(), createdAt: o.now(), stage: models.StageInput}
	return o
}

// Generate starts a fresh request from any stage.
func (o *Orchestrator) Generate(ctx context.Context, team models.TeamProfile, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apperrors.ErrEmptyRequest
	}

	next, err := o.begin(func(cur state) (state, error) {
		next := cur
		next.team = team
		next.text = text
		next.answers = nil
		next.pending = nil
		next.questions = nil
		next.result = nil
		next.round = 0
		return next, nil
	})
	if err != nil {
		return err
	}

	return o.run(ctx, next)
}

// SubmitAnswers answers the outstanding questions, one answer per question
// in order, and asks the model again with every answer collected so far.
func (o *Orchestrator) SubmitAnswers(ctx context.Context, answers []string) error {
	next, err := o.begin(func(cur state) (state, error) {
		if cur.stage != models.StageClarification {
			return cur, apperrors.ErrWrongStage.WithContext("stage", string(cur.stage))
		}
		if len(answers) != len(cur.questions) {
			return cur, apperrors.ErrAnswerCount.WithContext("detail",
				fmt.Sprintf("expected %d answers, got %d", len(cur.questions), len(answers)))
		}

		next := cur
		next.answers = make([]models.QA, 0, len(cur.answers)+len(answers))
		next.answers = append(next.answers, cur.answers...)
		for i, q := range cur.questions {
			next.answers = append(next.answers, models.QA{Question: q, Answer: strings.TrimSpace(answers[i])})
		}
		next.pending = nil
		return next, nil
	})
	if err != nil {
		return err
	}

	return o.run(ctx, next)
}

// Back steps one stage back. From Clarification the round is discarded.
// From Ready the last round is reopened with its answers prefilled, or the
// conversation returns to Input when no questions were asked.
func (o *Orchestrator) Back(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy {
		return apperrors.ErrBusy
	}

	cur := o.state
	next := cur
	switch cur.stage {
	case models.StageClarification:
		next.stage = models.StageInput
		next.questions = nil
		next.pending = nil
		next.answers = nil
		next.result = nil
		next.round = 0
	case models.StageReady:
		next.result = nil
		if len(cur.questions) == 0 {
			next.stage = models.StageInput
			break
		}
		next.stage = models.StageClarification
		split := len(cur.answers) - len(cur.questions)
		if split < 0 {
			split = 0
		}
		next.answers = append([]models.QA(nil), cur.answers[:split]...)
		next.pending = make([]string, len(cur.questions))
		for i, qa := range cur.answers[split:] {
			if i < len(next.pending) {
				next.pending[i] = qa.Answer
			}
		}
	default:
		return apperrors.ErrWrongStage.WithContext("stage", string(cur.stage))
	}

	o.state = next
	logger.Debug(ctx, "conversation moved back", "from", string(cur.stage), "stage", string(next.stage))
	return nil
}

// begin validates and prepares a transition under the lock and marks the
// conversation busy. The caller must hand the prepared state to run.
func (o *Orchestrator) begin(prepare func(state) (state, error)) (state, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy {
		return state{}, apperrors.ErrBusy
	}
	next, err := prepare(o.state)
	if err != nil {
		return state{}, err
	}
	o.busy = true
	return next, nil
}

func (o *Orchestrator) run(ctx context.Context, next state) error {
	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	result, err := o.generator.Generate(ctx, next.team, models.ConversationRequest{
		UserText: next.text,
		Answers:  next.answers,
	})
	if err != nil {
		return err
	}

	next, err = o.apply(next, result)
	if err != nil {
		logger.Warn(ctx, "model reply rejected", "error", err)
		return err
	}

	o.mu.Lock()
	o.state = next
	o.mu.Unlock()

	logger.Info(ctx, "conversation advanced",
		"stage", string(next.stage),
		"round", next.round,
		"questions", len(next.questions))
	return nil
}

func (o *Orchestrator) apply(next state, result models.ModelResult) (state, error) {
	switch result.Status {
	case models.StatusNeedClarification:
		if len(result.Questions) == 0 {
			return state{}, apperrors.ErrEmptyClarification
		}
		next.round++
		if o.maxRounds > 0 && next.round > o.maxRounds {
			return state{}, apperrors.ErrTooManyRounds.WithContext("detail",
				fmt.Sprintf("limit is %d rounds", o.maxRounds))
		}
		next.stage = models.StageClarification
		next.questions = append([]string(nil), result.Questions...)
		next.result = nil
	default:
		r := result
		next.stage = models.StageReady
		next.result = &r
	}
	return next, nil
}

func (o *Orchestrator) ID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.id
}

func (o *Orchestrator) Stage() models.Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.stage
}

func (o *Orchestrator) Team() models.TeamProfile {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.team
}

func (o *Orchestrator) Text() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.text
}

// Questions returns the questions of the current round.
func (o *Orchestrator) Questions() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.state.questions...)
}

// Answers returns every answered question, oldest first.
func (o *Orchestrator) Answers() []models.QA {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.QA(nil), o.state.answers...)
}

// PendingAnswers returns the answers prefilled after navigating back.
func (o *Orchestrator) PendingAnswers() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.state.pending...)
}

func (o *Orchestrator) Round() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.round
}

// Result returns the ticket when the conversation is Ready.
func (o *Orchestrator) Result() (models.ModelResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.result == nil {
		return models.ModelResult{}, false
	}
	return *o.state.result, true
}

func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}
