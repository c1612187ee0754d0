// Package anthropic calls the Anthropic Messages API over plain HTTP.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thomas-vilte/ticketmate/internal/ai"
	"github.com/thomas-vilte/ticketmate/internal/config"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/logger"
	"github.com/thomas-vilte/ticketmate/internal/models"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 4096
	requestTimeout   = 120 * time.Second
)

var _ ai.Provider = (*Provider)(nil)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Provider struct {
	client  HTTPClient
	apiKey  string
	model   string
	baseURL string
}

func NewProvider(cfg config.AIProviderConfig, client HTTPClient) *Provider {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := string(cfg.Model)
	if model == "" {
		model = string(config.DefaultModelForAI(config.AIAnthropic))
	}
	return &Provider{
		client:  client,
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
	}
}

func (p *Provider) GetModelName() string    { return p.model }
func (p *Provider) GetProviderName() string { return string(config.AIAnthropic) }

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Content    []contentBlock `json:"content"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) Call(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	payload, err := json.Marshal(messagesRequest{
		Model:     p.model,
		MaxTokens: defaultMaxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: userMessage}},
	})
	if err != nil {
		return "", apperrors.ErrInternal.WithError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.ErrAIGeneration.WithError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		log.Error("anthropic API call failed", "error", err, "model", p.model)
		return "", apperrors.ErrAIGeneration.WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.ErrAIGeneration.WithError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", mapStatusError(resp.StatusCode, body)
	}

	var decoded messagesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", apperrors.ErrAIGeneration.WithError(fmt.Errorf("decoding response: %w", err))
	}

	var text strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", apperrors.ErrEmptyAIResponse.WithContext("stop_reason", decoded.StopReason)
	}

	usage := models.TokenUsage{
		InputTokens:  decoded.Usage.InputTokens,
		OutputTokens: decoded.Usage.OutputTokens,
		TotalTokens:  decoded.Usage.InputTokens + decoded.Usage.OutputTokens,
		Model:        decoded.Model,
		DurationMs:   time.Since(start).Milliseconds(),
	}
	log.Debug("anthropic usage",
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"duration_ms", usage.DurationMs)

	return text.String(), nil
}

func mapStatusError(status int, body []byte) error {
	var apiErr errorResponse
	detail := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		detail = apiErr.Error.Message
	}
	cause := fmt.Errorf("anthropic API status %d", status)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.ErrAPIKeyInvalid.WithError(cause).WithContext("detail", detail)
	case status == http.StatusTooManyRequests || apiErr.Error.Type == "rate_limit_error" || apiErr.Error.Type == "overloaded_error":
		return apperrors.ErrQuotaExceeded.WithError(cause).WithContext("detail", detail)
	default:
		return apperrors.ErrAIGeneration.WithError(cause).WithContext("detail", detail)
	}
}

// Factory registers the provider under "anthropic".
type Factory struct {
	client HTTPClient
}

func NewFactory(client HTTPClient) *Factory {
	return &Factory{client: client}
}

func (f *Factory) Name() string { return string(config.AIAnthropic) }

func (f *Factory) ValidateConfig(cfg config.AIProviderConfig) error {
	if cfg.BaseURL == "" {
		return nil
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Host == "" {
		return apperrors.ErrInvalidConfig.WithContext("detail", fmt.Sprintf("anthropic base_url %q is not a valid URL", cfg.BaseURL))
	}
	return nil
}

func (f *Factory) CreateProvider(_ context.Context, cfg config.AIProviderConfig) (ai.Provider, error) {
	return NewProvider(cfg, f.client), nil
}
