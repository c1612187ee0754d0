package ai

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/ticketmate/internal/config"
)

type MockProvider struct {
	mock.Mock
	name  string
	model string
}

func (m *MockProvider) Call(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	args := m.Called(ctx, systemPrompt, userMessage)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) GetModelName() string    { return m.model }
func (m *MockProvider) GetProviderName() string { return m.name }

type MockTranscribingProvider struct {
	MockProvider
}

func (m *MockTranscribingProvider) Transcribe(ctx context.Context, prompt string, audio []byte, mimeType string) (string, error) {
	args := m.Called(ctx, prompt, audio, mimeType)
	return args.String(0), args.Error(1)
}

type fakeFactory struct {
	name        string
	provider    Provider
	validateErr error
	created     []config.AIProviderConfig
}

func (f *fakeFactory) Name() string { return f.name }

func (f *fakeFactory) ValidateConfig(config.AIProviderConfig) error { return f.validateErr }

func (f *fakeFactory) CreateProvider(_ context.Context, cfg config.AIProviderConfig) (Provider, error) {
	f.created = append(f.created, cfg)
	return f.provider, nil
}

type staticSettings struct {
	cfg   *config.Config
	err   error
	loads int
}

func (s *staticSettings) LoadSettings() (*config.Config, error) {
	s.loads++
	return s.cfg, s.err
}
