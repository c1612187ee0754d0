package ui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/models"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestHandleAppError(t *testing.T) {
	t.Run("Success - app error with detail and suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		err := apperrors.ErrAPIKeyMissing.
			WithContext("detail", "credential ai_providers.gemini.api_key is not set").
			WithSuggestion("Run: ticketmate config set-key gemini <key>")

		HandleAppError(&buf, err)

		out := buf.String()
		assert.Contains(t, out, "CONFIGURATION: AI API key is missing")
		assert.Contains(t, out, "credential ai_providers.gemini.api_key is not set")
		assert.Contains(t, out, "💡 Try: Run: ticketmate config set-key gemini <key>")
	})

	t.Run("Success - plain error", func(t *testing.T) {
		var buf bytes.Buffer

		HandleAppError(&buf, errors.New("boom"))

		assert.Contains(t, buf.String(), "boom")
	})

	t.Run("Success - nil error prints nothing", func(t *testing.T) {
		var buf bytes.Buffer

		HandleAppError(&buf, nil)

		assert.Empty(t, buf.String())
	})
}

func TestRenderTicket(t *testing.T) {
	result := models.NewReadyResult("Fix login bug", "Login fails.", models.TicketParams{
		"priority": models.StringValue("High"),
	})

	out := RenderTicket(result)

	assert.Contains(t, out, "Fix login bug")
	assert.Contains(t, out, "priority: High")
	assert.Contains(t, out, "Login fails.")
	assert.True(t, strings.Index(out, "Fix login bug") < strings.Index(out, "Login fails."))
}

func TestSpinnerModel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	called := false
	m := newSpinnerModel(ctx, cancel, "thinking", func(ctx context.Context) error {
		called = true
		return apperrors.ErrQuotaExceeded
	})

	msg := m.call()
	next, cmd := m.Update(msg)

	require.True(t, called)
	assert.NotNil(t, cmd)
	assert.ErrorIs(t, next.(spinnerModel).err, apperrors.ErrQuotaExceeded)
	assert.Empty(t, next.View())
}

func TestSpinnerModel_CtrlCCancelsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newSpinnerModel(ctx, cancel, "thinking", func(ctx context.Context) error { return ctx.Err() })

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.True(t, next.(spinnerModel).cancelled)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Contains(t, next.View(), "thinking")
}

func TestDirectRunner(t *testing.T) {
	err := DirectRunner{}.Run(context.Background(), "msg", func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestLineSpinnerRunner(t *testing.T) {
	t.Run("Success - returns the call result", func(t *testing.T) {
		// Arrange
		var buf bytes.Buffer
		runner := NewLineSpinnerRunner(&buf)
		called := false

		// Act
		err := runner.Run(context.Background(), "Thinking...", func(ctx context.Context) error {
			called = true
			return nil
		})

		// Assert
		assert.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("Error - propagates the call error", func(t *testing.T) {
		// Arrange
		runner := NewLineSpinnerRunner(&bytes.Buffer{})
		boom := errors.New("boom")

		// Act
		err := runner.Run(context.Background(), "Thinking...", func(ctx context.Context) error {
			return boom
		})

		// Assert
		assert.ErrorIs(t, err, boom)
	})
}
