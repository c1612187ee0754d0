// Package openai talks to OpenAI or any chat-completions compatible endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/thomas-vilte/ticketmate/internal/ai"
	"github.com/thomas-vilte/ticketmate/internal/config"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/logger"
)

const requestTimeout = 120 * time.Second

var _ ai.Provider = (*Provider)(nil)

type Provider struct {
	client openai.Client
	model  string
}

func NewProvider(cfg config.AIProviderConfig, httpClient *http.Client) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.ErrAPIKeyMissing.WithContext("provider", string(config.AIOpenAI))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(requestTimeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	model := string(cfg.Model)
	if model == "" {
		model = string(config.DefaultModelForAI(config.AIOpenAI))
	}

	return &Provider{client: openai.NewClient(opts...), model: model}, nil
}

func (p *Provider) GetModelName() string    { return p.model }
func (p *Provider) GetProviderName() string { return string(config.AIOpenAI) }

func (p *Provider) Call(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
	})
	if err != nil {
		logger.Error(ctx, "openai API call failed", err, "model", p.model)
		return "", mapError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperrors.ErrEmptyAIResponse.WithContext("model", p.model)
	}

	logger.Debug(ctx, "openai usage",
		"input_tokens", resp.Usage.PromptTokens,
		"output_tokens", resp.Usage.CompletionTokens)

	return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return apperrors.ErrAIGeneration.WithError(err)
	}

	cause := fmt.Errorf("openai API status %d: %w", apiErr.StatusCode, err)
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.ErrAPIKeyInvalid.WithError(cause)
	case http.StatusTooManyRequests:
		return apperrors.ErrQuotaExceeded.WithError(cause)
	default:
		return apperrors.ErrAIGeneration.WithError(cause)
	}
}

// Factory registers the provider under "openai".
type Factory struct {
	httpClient *http.Client
}

func NewFactory(httpClient *http.Client) *Factory {
	return &Factory{httpClient: httpClient}
}

func (f *Factory) Name() string { return string(config.AIOpenAI) }

func (f *Factory) ValidateConfig(cfg config.AIProviderConfig) error {
	if cfg.BaseURL != "" && !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return apperrors.ErrInvalidConfig.WithContext("detail", fmt.Sprintf("openai base_url %q must be an http(s) URL", cfg.BaseURL))
	}
	return nil
}

func (f *Factory) CreateProvider(_ context.Context, cfg config.AIProviderConfig) (ai.Provider, error) {
	provider, err := NewProvider(cfg, f.httpClient)
	if err != nil {
		return nil, err
	}
	return provider, nil
}
