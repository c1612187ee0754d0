package drafts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/ticketmate/internal/commands/commandtest"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/models"
)

func readyDraft(id string) models.Draft {
	result := models.NewReadyResult("Fix login", "Users cannot log in.", models.TicketParams{"priority": models.StringValue("High")})
	return models.Draft{
		ID:        id,
		TeamName:  "backend",
		UserInput: "fix login",
		Stage:     models.StageReady,
		Result:    &result,
		UpdatedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestDraftsCommand_List(t *testing.T) {
	t.Run("Success - lists saved drafts", func(t *testing.T) {
		// Arrange
		env := commandtest.Setup(t, "")
		env.SaveDraft(t, readyDraft("0f1e2d3c-aaaa-bbbb-cccc-000000000001"))
		cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

		// Act
		err := env.Run(cmd, "drafts", "list")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, env.Out.String(), "0f1e2d3c")
		assert.Contains(t, env.Out.String(), "Fix login")
	})

	t.Run("Success - empty", func(t *testing.T) {
		// Arrange
		env := commandtest.Setup(t, "")
		cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

		// Act
		err := env.Run(cmd, "drafts", "ls")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, env.Out.String(), "No drafts saved")
	})
}

func TestDraftsCommand_Show(t *testing.T) {
	t.Run("Success - shows clarification questions", func(t *testing.T) {
		// Arrange
		env := commandtest.Setup(t, "")
		env.SaveDraft(t, models.Draft{
			ID:             "abc123",
			TeamName:       "backend",
			UserInput:      "add export",
			Stage:          models.StageClarification,
			Questions:      []string{"Which format?"},
			PendingAnswers: []string{"CSV"},
			Round:          1,
		})
		cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

		// Act
		err := env.Run(cmd, "drafts", "show", "abc")

		// Assert
		require.NoError(t, err)
		out := env.Out.String()
		assert.Contains(t, out, "add export")
		assert.Contains(t, out, "Which format?")
		assert.Contains(t, out, "previous: CSV")
	})

	t.Run("Error - ambiguous prefix", func(t *testing.T) {
		// Arrange
		env := commandtest.Setup(t, "")
		env.SaveDraft(t, readyDraft("abc1"))
		env.SaveDraft(t, readyDraft("abc2"))
		cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

		// Act
		err := env.Run(cmd, "drafts", "show", "abc")

		// Assert
		assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)
		assert.Contains(t, err.Error(), "matches 2 drafts")
	})

	t.Run("Error - missing id", func(t *testing.T) {
		// Arrange
		env := commandtest.Setup(t, "")
		cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

		// Act
		err := env.Run(cmd, "drafts", "show")

		// Assert
		assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)
	})
}

func TestDraftsCommand_Export(t *testing.T) {
	t.Run("Success - markdown to stdout", func(t *testing.T) {
		// Arrange
		env := commandtest.Setup(t, "")
		env.SaveDraft(t, readyDraft("d1"))
		cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

		// Act
		err := env.Run(cmd, "drafts", "export", "d1")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, env.Out.String(), "# Fix login")
		assert.Contains(t, env.Out.String(), "- **priority:** High")
	})

	t.Run("Success - html to file", func(t *testing.T) {
		// Arrange
		env := commandtest.Setup(t, "")
		env.SaveDraft(t, readyDraft("d1"))
		path := filepath.Join(t.TempDir(), "ticket.html")
		cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

		// Act
		err := env.Run(cmd, "drafts", "export", "--format", "html", "--out", path, "d1")

		// Assert
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<h1")
		assert.Contains(t, env.Out.String(), "Exported to "+path)
	})

	t.Run("Error - draft not ready", func(t *testing.T) {
		// Arrange
		env := commandtest.Setup(t, "")
		env.SaveDraft(t, models.Draft{ID: "d2", TeamName: "backend", UserInput: "add export", Stage: models.StageInput})
		cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

		// Act
		err := env.Run(cmd, "drafts", "export", "d2")

		// Assert
		assert.ErrorIs(t, err, apperrors.ErrDraftNotReady)
	})

	t.Run("Error - unknown format", func(t *testing.T) {
		// Arrange
		env := commandtest.Setup(t, "")
		env.SaveDraft(t, readyDraft("d1"))
		cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

		// Act
		err := env.Run(cmd, "drafts", "export", "--format", "pdf", "d1")

		// Assert
		assert.True(t, apperrors.IsType(err, apperrors.TypeValidation))
	})
}

func TestDraftsCommand_Delete(t *testing.T) {
	// Arrange
	env := commandtest.Setup(t, "")
	env.SaveDraft(t, readyDraft("d1"))
	cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

	// Act
	err := env.Run(cmd, "drafts", "rm", "d1")

	// Assert
	require.NoError(t, err)
	_, err = env.Deps.Drafts.Get("d1")
	assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)
	assert.Contains(t, env.Out.String(), "Draft d1 deleted")
}

func TestDraftsCommand_Resume(t *testing.T) {
	t.Run("Success - answers the saved round", func(t *testing.T) {
		// Arrange
		env := commandtest.Setup(t, "\ns\n")
		team := env.AddTeam(t, "backend", "BE")
		env.SaveDraft(t, models.Draft{
			ID:             "r1",
			TeamName:       "backend",
			UserInput:      "add export",
			Stage:          models.StageClarification,
			Questions:      []string{"Which format?"},
			PendingAnswers: []string{"CSV"},
			Round:          1,
		})
		env.Generator.On("Generate", mock.Anything, team, models.ConversationRequest{
			UserText: "add export",
			Answers:  []models.QA{{Question: "Which format?", Answer: "CSV"}},
		}).Return(models.NewReadyResult("Add CSV export", "body", nil), nil).Once()
		cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

		// Act
		err := env.Run(cmd, "drafts", "resume", "r1")

		// Assert
		require.NoError(t, err)
		draft, err := env.Deps.Drafts.Get("r1")
		require.NoError(t, err)
		assert.Equal(t, models.StageReady, draft.Stage)
		assert.Equal(t, "Add CSV export", draft.Result.Title)
		env.Generator.AssertExpectations(t)
	})

	t.Run("Error - team was removed", func(t *testing.T) {
		// Arrange
		env := commandtest.Setup(t, "")
		env.SaveDraft(t, readyDraft("d1"))
		cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

		// Act
		err := env.Run(cmd, "drafts", "resume", "d1")

		// Assert
		assert.ErrorIs(t, err, apperrors.ErrTeamNotFound)
	})
}

func TestDraftsCommand_ResumeDeletesAfterCreate(t *testing.T) {
	// Arrange
	env := commandtest.Setup(t, "c\n")
	env.AddTeam(t, "backend", "BE")
	env.SaveDraft(t, readyDraft("d1"))
	env.Tracker.On("CreateIssue", mock.Anything, mock.Anything).
		Return(models.Issue{Key: "BE-1", URL: "https://jira.example.com/browse/BE-1"}, nil).Once()
	cmd := NewDraftsCommandFactory(env.Deps).CreateCommand(env.T, env.Cfg)

	// Act
	err := env.Run(cmd, "drafts", "resume", "d1")

	// Assert
	require.NoError(t, err)
	all, err := env.Deps.Drafts.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
