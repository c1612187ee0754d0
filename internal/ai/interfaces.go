package ai

import (
	"context"

	"github.com/thomas-vilte/ticketmate/internal/config"
)

// LLMCaller sends one system prompt and user message to a model and
// returns the raw reply text. Implementations never retry.
type LLMCaller interface {
	Call(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Provider is an LLMCaller bound to a concrete back end and model.
type Provider interface {
	LLMCaller

	// GetModelName returns the name of the current model (e.g.: "gemini-2.5-flash")
	GetModelName() string

	// GetProviderName returns the name of the provider (e.g.: "gemini", "openai", "anthropic")
	GetProviderName() string
}

// AudioTranscriber sends a recording plus an instruction to a model that
// understands audio and returns the raw reply.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, prompt string, audio []byte, mimeType string) (string, error)
}

// SettingsSource supplies the current settings. It is consulted before
// every model call so edits take effect without restarting.
type SettingsSource interface {
	LoadSettings() (*config.Config, error)
}
