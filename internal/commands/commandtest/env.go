// Package commandtest provides the mocks and the scratch data root used by
// the command package tests.
package commandtest

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/ticketmate/internal/commands"
	"github.com/thomas-vilte/ticketmate/internal/config"
	"github.com/thomas-vilte/ticketmate/internal/drafts"
	"github.com/thomas-vilte/ticketmate/internal/i18n"
	"github.com/thomas-vilte/ticketmate/internal/models"
	"github.com/thomas-vilte/ticketmate/internal/storage"
	"github.com/thomas-vilte/ticketmate/internal/teams"
	"github.com/thomas-vilte/ticketmate/internal/ui"
	"github.com/urfave/cli/v3"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, team models.TeamProfile, req models.ConversationRequest) (models.ModelResult, error) {
	args := m.Called(ctx, team, req)
	return args.Get(0).(models.ModelResult), args.Error(1)
}

type MockIssueCreator struct {
	mock.Mock
}

func (m *MockIssueCreator) CreateIssue(ctx context.Context, req models.IssueRequest) (models.Issue, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.Issue), args.Error(1)
}

type MockVoiceClassifier struct {
	mock.Mock
}

func (m *MockVoiceClassifier) Classify(ctx context.Context, audioPath string, teams []models.TeamProfile) (models.VoiceResult, error) {
	args := m.Called(ctx, audioPath, teams)
	return args.Get(0).(models.VoiceResult), args.Error(1)
}

type Env struct {
	Root      *storage.Root
	Cfg       *config.Config
	T         *i18n.Translations
	Out       *bytes.Buffer
	Generator *MockGenerator
	Tracker   *MockIssueCreator
	Voice     *MockVoiceClassifier
	Deps      commands.Deps
}

// Setup builds a fresh data root and deps reading input as the terminal.
// Output is uncolored.
func Setup(t *testing.T, input string) *Env {
	t.Helper()
	color.NoColor = true

	root := storage.NewRoot(t.TempDir())
	require.NoError(t, root.Ensure())

	cfg, err := config.LoadConfig(root)
	require.NoError(t, err)

	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	draftStore, err := drafts.NewStore(root.DraftsDir())
	require.NoError(t, err)

	env := &Env{
		Root:      root,
		Cfg:       cfg,
		T:         translations,
		Out:       &bytes.Buffer{},
		Generator: new(MockGenerator),
		Tracker:   new(MockIssueCreator),
		Voice:     new(MockVoiceClassifier),
	}
	env.Deps = commands.Deps{
		Root:      root,
		Settings:  config.NewFileSource(root),
		Generator: env.Generator,
		Voice:     env.Voice,
		Drafts:    draftStore,
		Teams:     teams.NewStore(root.TeamsDir()),
		Tracker: func(*config.Config) (commands.IssueCreator, error) {
			return env.Tracker, nil
		},
		Runner: ui.DirectRunner{},
		In:     strings.NewReader(input),
		Out:    env.Out,
	}
	return env
}

func (e *Env) AddTeam(t *testing.T, name, project string) models.TeamProfile {
	t.Helper()
	team, err := e.Deps.Teams.Save(context.Background(), models.TeamProfile{Name: name, JiraProject: project})
	require.NoError(t, err)
	return team
}

func (e *Env) SaveDraft(t *testing.T, draft models.Draft) models.Draft {
	t.Helper()
	saved, err := e.Deps.Drafts.Save(draft)
	require.NoError(t, err)
	return saved
}

// Run executes cmd as the only subcommand of a bare app.
func (e *Env) Run(cmd *cli.Command, args ...string) error {
	app := &cli.Command{Commands: []*cli.Command{cmd}}
	return app.Run(context.Background(), append([]string{"ticketmate"}, args...))
}
