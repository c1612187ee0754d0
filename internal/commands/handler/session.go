// Package handler runs the interactive ticket conversation shared by the
// new and drafts resume commands.
package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thomas-vilte/ticketmate/internal/commands"
	"github.com/thomas-vilte/ticketmate/internal/config"
	"github.com/thomas-vilte/ticketmate/internal/conversation"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/i18n"
	"github.com/thomas-vilte/ticketmate/internal/jira"
	"github.com/thomas-vilte/ticketmate/internal/logger"
	"github.com/thomas-vilte/ticketmate/internal/models"
	"github.com/thomas-vilte/ticketmate/internal/ui"
)

// Inline commands accepted at any prompt of a session.
const (
	cmdBack = "/back"
	cmdSave = "/save"
	cmdQuit = "/quit"
)

// ErrQuit is returned when the user leaves before the session finishes.
var ErrQuit = errors.New("session quit")

var errDone = errors.New("session done")

// Session drives one conversation from the terminal.
type Session struct {
	deps   commands.Deps
	t      *i18n.Translations
	orch   *conversation.Orchestrator
	team   models.TeamProfile
	reader *bufio.Reader

	// text is the request to send on the next Input round.
	text     string
	lastText string
	saved    bool
	lastErr  error
}

func NewSession(deps commands.Deps, t *i18n.Translations, cfg *config.Config) *Session {
	return &Session{
		deps:   deps,
		t:      t,
		orch:   conversation.NewOrchestrator(deps.Generator, conversation.WithMaxRounds(cfg.MaxClarificationRounds)),
		reader: bufio.NewReader(deps.In),
	}
}

// SetRequest queues text as the first request so the Input prompt is
// skipped.
func (s *Session) SetRequest(text string) {
	s.text = text
}

func (s *Session) SetTeam(team models.TeamProfile) {
	s.team = team
}

// Restore continues a saved draft.
func (s *Session) Restore(draft models.Draft, team models.TeamProfile) error {
	if err := s.orch.Restore(draft, team); err != nil {
		return err
	}
	s.team = team
	s.saved = true
	s.lastText = draft.UserInput
	return nil
}

// Run loops over the conversation stages until the issue is created, the
// draft is saved from the ready menu or the user quits. After a quit it
// returns the last error shown, if any.
func (s *Session) Run(ctx context.Context) error {
	ctx = logger.With(ctx, "conversation", s.orch.ID(), "team", s.team.Name)
	for {
		var err error
		switch s.orch.Stage() {
		case models.StageInput:
			err = s.input(ctx)
		case models.StageClarification:
			err = s.clarify(ctx)
		case models.StageReady:
			err = s.ready(ctx)
		}

		switch {
		case errors.Is(err, errDone):
			return nil
		case errors.Is(err, ErrQuit):
			return s.lastErr
		case err != nil:
			return err
		}
	}
}

func (s *Session) input(ctx context.Context) error {
	text := s.text
	s.text = ""
	if text == "" {
		label := s.t.GetMessage("new.prompt_text", 0, nil)
		if s.lastText != "" {
			label = s.t.GetMessage("new.prompt_text_again", 0, map[string]interface{}{"Text": s.lastText})
		}
		line, err := s.readLine(label)
		if err != nil {
			return err
		}
		switch line {
		case cmdQuit:
			return ErrQuit
		case cmdSave:
			if strings.TrimSpace(s.orch.Text()) == "" {
				ui.PrintWarning(s.deps.Out, s.t.GetMessage("new.nothing_to_save", 0, nil))
				return nil
			}
			s.save()
			return nil
		case cmdBack:
			ui.PrintWarning(s.deps.Out, s.t.GetMessage("new.nothing_to_go_back", 0, nil))
			return nil
		case "":
			if s.lastText == "" {
				return nil
			}
			line = s.lastText
		}
		text = line
	}

	s.lastText = text
	return s.call(ctx, func(ctx context.Context) error {
		return s.orch.Generate(ctx, s.team, text)
	})
}

func (s *Session) clarify(ctx context.Context) error {
	questions := s.orch.Questions()
	pending := s.orch.PendingAnswers()
	ui.PrintQuestions(s.deps.Out, questions, pending, s.t)

	answers := make([]string, len(questions))
	for i := range questions {
		line, err := s.readLine(fmt.Sprintf("%d> ", i+1))
		if err != nil {
			return err
		}
		switch line {
		case cmdQuit:
			return ErrQuit
		case cmdSave:
			if err := s.orch.SetPendingAnswers(answers[:i]); err != nil {
				s.fail(err)
				return nil
			}
			s.save()
			return nil
		case cmdBack:
			return s.back(ctx)
		case "":
			if i < len(pending) {
				line = pending[i]
			}
		}
		answers[i] = line
	}

	return s.call(ctx, func(ctx context.Context) error {
		return s.orch.SubmitAnswers(ctx, answers)
	})
}

func (s *Session) ready(ctx context.Context) error {
	result, _ := s.orch.Result()
	ui.PrintTicket(s.deps.Out, result)

	line, err := s.readLine(s.t.GetMessage("new.ready_menu", 0, nil))
	if err != nil {
		return err
	}
	switch strings.ToLower(line) {
	case "c", "create":
		return s.createIssue(ctx, result)
	case "s", "save", cmdSave:
		if !s.save() {
			return nil
		}
		return errDone
	case "b", "back", cmdBack:
		return s.back(ctx)
	case "q", "quit", cmdQuit:
		return ErrQuit
	default:
		ui.PrintWarning(s.deps.Out, s.t.GetMessage("new.unknown_choice", 0, map[string]interface{}{"Choice": line}))
		return nil
	}
}

func (s *Session) createIssue(ctx context.Context, result models.ModelResult) error {
	cfg, err := s.deps.Settings.LoadSettings()
	if err != nil {
		s.fail(err)
		return nil
	}
	tracker, err := s.deps.Tracker(cfg)
	if err != nil {
		s.fail(err)
		return nil
	}

	req := jira.IssueRequestFromResult(result, s.team)
	var issue models.Issue
	err = s.deps.Runner.Run(ctx, s.t.GetMessage("new.creating_issue", 0, nil), func(ctx context.Context) error {
		var err error
		issue, err = tracker.CreateIssue(ctx, req)
		return err
	})
	if err != nil {
		s.fail(err)
		return nil
	}

	ui.PrintSuccess(s.deps.Out, s.t.GetMessage("new.issue_created", 0, map[string]interface{}{"Key": issue.Key, "URL": issue.URL}))
	if s.saved {
		if err := s.deps.Drafts.Delete(s.orch.ID()); err != nil {
			logger.Warn(ctx, "could not remove draft after creating issue", "error", err)
		}
	}
	s.lastErr = nil
	return errDone
}

func (s *Session) back(ctx context.Context) error {
	if err := s.orch.Back(ctx); err != nil {
		ui.HandleAppError(s.deps.Out, err, s.t)
	}
	return nil
}

// save writes the conversation as a draft. A failed write is shown and the
// session stays where it was.
func (s *Session) save() bool {
	draft, err := s.deps.Drafts.Save(s.orch.Snapshot())
	if err != nil {
		s.fail(err)
		return false
	}
	s.saved = true
	s.lastErr = nil
	ui.PrintSuccess(s.deps.Out, s.t.GetMessage("new.draft_saved", 0, map[string]interface{}{"ID": draft.ID}))
	return true
}

// call runs a model transition behind the spinner. Failures are shown and
// the session stays where it was.
func (s *Session) call(ctx context.Context, fn func(ctx context.Context) error) error {
	err := s.deps.Runner.Run(ctx, s.t.GetMessage("new.thinking", 0, nil), fn)
	if err != nil {
		s.fail(err)
		return nil
	}
	s.lastErr = nil
	return nil
}

func (s *Session) fail(err error) {
	s.lastErr = err
	ui.HandleAppError(s.deps.Out, err, s.t)
}

// readLine prints label and reads one trimmed line. End of input quits.
func (s *Session) readLine(label string) (string, error) {
	_, _ = fmt.Fprintf(s.deps.Out, "%s ", ui.Info.Sprint(label))
	line, err := s.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		_, _ = fmt.Fprintln(s.deps.Out)
		return "", ErrQuit
	}
	return strings.TrimSpace(line), nil
}

// ChooseTeam picks the team by flag, voice guess, the only team, or by
// asking.
func (s *Session) ChooseTeam(ctx context.Context, all []models.TeamProfile, name string, guess *string) (models.TeamProfile, error) {
	if len(all) == 0 {
		return models.TeamProfile{}, apperrors.ErrTeamNotFound.
			WithContext("detail", "no teams are configured").
			WithSuggestion("ticketmate teams add --name <team> --project <KEY>")
	}
	if name == "" && guess != nil {
		name = *guess
	}
	if name != "" {
		return s.deps.Teams.Get(ctx, name)
	}
	if len(all) == 1 {
		return all[0], nil
	}

	ui.PrintSectionBanner(s.deps.Out, s.t.GetMessage("new.choose_team", 0, nil))
	for i, team := range all {
		_, _ = fmt.Fprintf(s.deps.Out, "%s %s %s\n", ui.Accent.Sprintf("%d.", i+1), team.Name, ui.Dim.Sprintf("(%s)", team.JiraProject))
	}
	for {
		line, err := s.readLine(">")
		if err != nil {
			return models.TeamProfile{}, err
		}
		if line == cmdQuit {
			return models.TeamProfile{}, ErrQuit
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(all) {
			return all[n-1], nil
		}
		for _, team := range all {
			if strings.EqualFold(team.Name, line) {
				return team, nil
			}
		}
		ui.PrintWarning(s.deps.Out, s.t.GetMessage("new.unknown_choice", 0, map[string]interface{}{"Choice": line}))
	}
}
