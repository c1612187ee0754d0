package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/thomas-vilte/ticketmate/internal/cache"
	"github.com/thomas-vilte/ticketmate/internal/config"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/logger"
	"github.com/thomas-vilte/ticketmate/internal/models"
)

// Router resolves the configured provider on every call, assembles the
// prompts and normalizes the reply.
type Router struct {
	settings SettingsSource
	registry *Registry
	cacheDir string
}

type RouterOption func(*Router)

// WithCacheDir enables the response cache when cache_ttl_minutes > 0.
func WithCacheDir(dir string) RouterOption {
	return func(r *Router) { r.cacheDir = dir }
}

func NewRouter(settings SettingsSource, registry *Registry, opts ...RouterOption) *Router {
	r := &Router{settings: settings, registry: registry}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate runs one model round for the request.
func (r *Router) Generate(ctx context.Context, team models.TeamProfile, req models.ConversationRequest) (models.ModelResult, error) {
	cfg, err := r.settings.LoadSettings()
	if err != nil {
		return models.ModelResult{}, err
	}

	caller, err := r.resolve(ctx, cfg, cfg.ActiveLLM)
	if err != nil {
		return models.ModelResult{}, err
	}

	assembler := NewPromptAssembler(cfg.Language)
	systemPrompt, err := assembler.BuildSystemPrompt(team)
	if err != nil {
		return models.ModelResult{}, apperrors.ErrInternal.WithError(err)
	}
	userMessage := assembler.BuildUserMessage(req.UserText, req.Answers)

	ctx = logger.With(ctx, "provider", caller.GetProviderName(), "model", caller.GetModelName())
	logger.Debug(ctx, "calling model", "answers", len(req.Answers))

	start := time.Now()
	raw, err := caller.Call(ctx, systemPrompt, userMessage)
	if err != nil {
		logger.Error(ctx, "model call failed", err)
		return models.ModelResult{}, err
	}

	result := NewResponseParser(assembler.FallbackTitle()).Parse(raw)
	logger.Info(ctx, "model replied",
		"status", string(result.Status),
		"questions", len(result.Questions),
		"duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

// Transcriber returns the audio-capable provider. Only gemini understands
// audio, regardless of the active provider.
func (r *Router) Transcriber(ctx context.Context) (AudioTranscriber, error) {
	cfg, err := r.settings.LoadSettings()
	if err != nil {
		return nil, err
	}

	provider, err := r.provider(ctx, cfg, config.AIGemini)
	if err != nil {
		if apperrors.IsType(err, apperrors.TypeConfiguration) {
			return nil, apperrors.ErrTranscriptionUnsupported.WithError(err)
		}
		return nil, err
	}

	transcriber, ok := provider.(AudioTranscriber)
	if !ok {
		return nil, apperrors.ErrTranscriptionUnsupported
	}
	return transcriber, nil
}

func (r *Router) resolve(ctx context.Context, cfg *config.Config, name config.AI) (Provider, error) {
	provider, err := r.provider(ctx, cfg, name)
	if err != nil {
		return nil, err
	}

	if r.cacheDir == "" || cfg.CacheTTLMinutes <= 0 {
		return provider, nil
	}

	c, err := cache.NewCache(r.cacheDir, time.Duration(cfg.CacheTTLMinutes)*time.Minute)
	if err != nil {
		logger.Warn(ctx, "response cache disabled", "error", err)
		return provider, nil
	}
	return NewCachingCaller(provider, c), nil
}

func (r *Router) provider(ctx context.Context, cfg *config.Config, name config.AI) (Provider, error) {
	factory, err := r.registry.Get(string(name))
	if err != nil {
		return nil, apperrors.ErrUnknownProvider.WithError(err).WithContext("provider", string(name))
	}

	settings := cfg.Provider(name)
	if settings.APIKey == "" {
		return nil, MissingKeyError(name)
	}

	if err := factory.ValidateConfig(settings); err != nil {
		return nil, err
	}

	return factory.CreateProvider(ctx, settings)
}

// MissingKeyError names the missing credential and both places it can be set.
func MissingKeyError(name config.AI) *apperrors.AppError {
	return apperrors.ErrAPIKeyMissing.
		WithContext("provider", string(name)).
		WithContext("detail", fmt.Sprintf("credential ai_providers.%s.api_key is not set", name)).
		WithSuggestion(fmt.Sprintf("Run: ticketmate config set-key --provider %s --key <key> (or export %s)", name, config.APIKeyEnvVar(name)))
}
