package commands

import (
	"context"
	"io"

	"github.com/thomas-vilte/ticketmate/internal/ai"
	"github.com/thomas-vilte/ticketmate/internal/config"
	"github.com/thomas-vilte/ticketmate/internal/conversation"
	"github.com/thomas-vilte/ticketmate/internal/drafts"
	"github.com/thomas-vilte/ticketmate/internal/jira"
	"github.com/thomas-vilte/ticketmate/internal/models"
	"github.com/thomas-vilte/ticketmate/internal/storage"
	"github.com/thomas-vilte/ticketmate/internal/teams"
	"github.com/thomas-vilte/ticketmate/internal/ui"
)

// IssueCreator files a finished ticket in the tracker.
type IssueCreator interface {
	CreateIssue(ctx context.Context, req models.IssueRequest) (models.Issue, error)
}

// VoiceClassifier turns a recording into a description and team guess.
type VoiceClassifier interface {
	Classify(ctx context.Context, audioPath string, teams []models.TeamProfile) (models.VoiceResult, error)
}

// Deps carries the services shared by the commands.
type Deps struct {
	Root      *storage.Root
	Settings  ai.SettingsSource
	Generator conversation.Generator
	Voice     VoiceClassifier
	Drafts    *drafts.Store
	Teams     *teams.Store
	// Tracker builds the issue tracker client from freshly loaded settings.
	Tracker func(cfg *config.Config) (IssueCreator, error)
	Runner  ui.Runner
	In      io.Reader
	Out     io.Writer
}

// JiraTracker is the default Deps.Tracker.
func JiraTracker(cfg *config.Config) (IssueCreator, error) {
	client, err := jira.NewClient(cfg, nil)
	if err != nil {
		return nil, err
	}
	return client, nil
}
