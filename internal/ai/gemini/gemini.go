package gemini

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/thomas-vilte/ticketmate/internal/ai"
	"github.com/thomas-vilte/ticketmate/internal/config"
	domainErrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/logger"
	"github.com/thomas-vilte/ticketmate/internal/models"
	"google.golang.org/genai"
)

var (
	_ ai.Provider         = (*GeminiProvider)(nil)
	_ ai.AudioTranscriber = (*GeminiProvider)(nil)
)

type GeminiProvider struct {
	Client *genai.Client
	model  string
}

// NewGeminiProvider creates the client for the Gemini API. httpClient and
// cfg.BaseURL are optional.
func NewGeminiProvider(ctx context.Context, cfg config.AIProviderConfig, httpClient *http.Client) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing.WithContext("provider", string(config.AIGemini))
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, mapError(err)
	}

	model := string(cfg.Model)
	if model == "" {
		model = string(config.DefaultModelForAI(config.AIGemini))
	}

	return &GeminiProvider{Client: client, model: model}, nil
}

func (g *GeminiProvider) GetModelName() string {
	return g.model
}

func (g *GeminiProvider) GetProviderName() string {
	return string(config.AIGemini)
}

func (g *GeminiProvider) Call(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	genConfig := GetGenerateConfig(g.model, "application/json")
	genConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)

	return g.generate(ctx, genai.Text(userMessage), genConfig)
}

// Transcribe sends the recording and the instruction as one user turn.
func (g *GeminiProvider) Transcribe(ctx context.Context, prompt string, audio []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(audio, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	return g.generate(ctx, contents, GetGenerateConfig(g.model, ""))
}

func (g *GeminiProvider) generate(ctx context.Context, contents []*genai.Content, genConfig *genai.GenerateContentConfig) (string, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	resp, err := g.Client.Models.GenerateContent(ctx, g.model, contents, genConfig)
	if err != nil {
		log.Error("gemini API call failed",
			"error", err,
			"model", g.model)
		return "", mapError(err)
	}

	text := formatResponse(resp)
	if strings.TrimSpace(text) == "" {
		return "", domainErrors.ErrEmptyAIResponse.WithContext("model", g.model)
	}

	if usage := extractUsage(resp); usage != nil {
		usage.Model = g.model
		usage.DurationMs = time.Since(start).Milliseconds()
		log.Debug("gemini usage",
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"duration_ms", usage.DurationMs)
	}

	return text, nil
}

func mapError(err error) error {
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "quota") ||
		strings.Contains(errMsg, "rate limit") ||
		strings.Contains(errMsg, "resource exhausted") ||
		strings.Contains(errMsg, "resource_exhausted") {
		return domainErrors.ErrQuotaExceeded.WithError(err)
	}

	if strings.Contains(errMsg, "api key") ||
		strings.Contains(errMsg, "api_key") ||
		strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "unauthenticated") ||
		strings.Contains(errMsg, "permission_denied") {
		return domainErrors.ErrAPIKeyInvalid.WithError(err)
	}

	return domainErrors.ErrAIGeneration.WithError(err)
}

// formatResponse concatenates the text parts of every candidate, skipping
// thought parts.
func formatResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// extractUsage extracts usage metadata from the Gemini response
func extractUsage(resp *genai.GenerateContentResponse) *models.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &models.TokenUsage{
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
	}
}

// GetGenerateConfig returns the generation settings; responseType
// "application/json" asks the model for a bare JSON body.
func GetGenerateConfig(modelName string, responseType string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     float32Ptr(0.3),
		MaxOutputTokens: int32(8192),
	}

	if responseType != "" {
		cfg.ResponseMIMEType = responseType
	}

	// 2.5 Flash spends its output budget on thinking unless capped.
	if strings.HasPrefix(modelName, "gemini-2.5-flash") {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: int32Ptr(1024),
		}
	}

	return cfg
}

func float32Ptr(f float32) *float32 {
	return &f
}

func int32Ptr(i int32) *int32 {
	return &i
}

// Factory registers the provider under "gemini".
type Factory struct {
	httpClient *http.Client
}

func NewFactory(httpClient *http.Client) *Factory {
	return &Factory{httpClient: httpClient}
}

func (f *Factory) Name() string { return string(config.AIGemini) }

func (f *Factory) ValidateConfig(cfg config.AIProviderConfig) error {
	if cfg.Model != "" && !strings.HasPrefix(string(cfg.Model), "gemini-") {
		return domainErrors.ErrInvalidConfig.WithContext("detail", "gemini model must start with gemini-")
	}
	return nil
}

func (f *Factory) CreateProvider(ctx context.Context, cfg config.AIProviderConfig) (ai.Provider, error) {
	provider, err := NewGeminiProvider(ctx, cfg, f.httpClient)
	if err != nil {
		return nil, err
	}
	return provider, nil
}
