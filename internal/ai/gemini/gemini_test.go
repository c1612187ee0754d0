package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/ticketmate/internal/config"
	domainErrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"google.golang.org/genai"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewGeminiProvider(context.Background(), config.AIProviderConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/",
	}, server.Client())
	require.NoError(t, err)
	return provider
}

func TestGeminiProvider_Call(t *testing.T) {
	t.Run("Success - system instruction and text", func(t *testing.T) {
		var body map[string]any
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent"), r.URL.Path)
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, &body))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"status\":\"ready\"}"}]}}],
				"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}
			}`))
		})

		reply, err := provider.Call(context.Background(), "system prompt", "user message")

		require.NoError(t, err)
		assert.Equal(t, `{"status":"ready"}`, reply)
		assert.Contains(t, body, "systemInstruction")
		assert.Contains(t, body, "contents")
	})

	t.Run("Error - quota", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted (e.g. check quota).","status":"RESOURCE_EXHAUSTED"}}`))
		})

		_, err := provider.Call(context.Background(), "s", "u")

		assert.ErrorIs(t, err, domainErrors.ErrQuotaExceeded)
	})
}

func TestGeminiProvider_Transcribe(t *testing.T) {
	var body struct {
		Contents []struct {
			Parts []map[string]any `json:"parts"`
		} `json:"contents"`
	}
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"team_name\":null,\"description\":\"d\"}"}]}}]}`))
	})

	reply, err := provider.Transcribe(context.Background(), "classify", []byte("RIFF....WAVE"), "audio/wav")

	require.NoError(t, err)
	assert.Contains(t, reply, `"description":"d"`)
	require.Len(t, body.Contents, 1)
	require.Len(t, body.Contents[0].Parts, 2)
	assert.Contains(t, body.Contents[0].Parts[0], "inlineData")
	assert.Equal(t, "classify", body.Contents[0].Parts[1]["text"])
}

func TestNewGeminiProvider_MissingKey(t *testing.T) {
	provider, err := NewGeminiProvider(context.Background(), config.AIProviderConfig{}, nil)

	assert.Nil(t, provider)
	assert.ErrorIs(t, err, domainErrors.ErrAPIKeyMissing)
}

func TestFactory_CreateProvider_NoTypedNil(t *testing.T) {
	provider, err := NewFactory(nil).CreateProvider(context.Background(), config.AIProviderConfig{})

	assert.Error(t, err)
	assert.True(t, provider == nil, "provider interface should be truly nil, not a typed nil")
}

func TestFactory_ValidateConfig(t *testing.T) {
	f := NewFactory(nil)

	assert.NoError(t, f.ValidateConfig(config.AIProviderConfig{}))
	assert.NoError(t, f.ValidateConfig(config.AIProviderConfig{Model: "gemini-2.5-pro"}))
	assert.ErrorIs(t, f.ValidateConfig(config.AIProviderConfig{Model: "gpt-4o"}), domainErrors.ErrInvalidConfig)
}

func TestFormatResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "{\"status\":"},
				nil,
				{Text: "\"ready\"}"},
			}}},
			nil,
			{Content: nil},
		},
	}

	assert.Equal(t, `{"status":"ready"}`, formatResponse(resp))
	assert.Equal(t, "", formatResponse(nil))
}

func TestExtractUsage(t *testing.T) {
	assert.Nil(t, extractUsage(nil))
	assert.Nil(t, extractUsage(&genai.GenerateContentResponse{}))

	usage := extractUsage(&genai.GenerateContentResponse{
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     100,
			CandidatesTokenCount: 20,
			TotalTokenCount:      120,
		},
	})
	require.NotNil(t, usage)
	assert.Equal(t, 100, usage.InputTokens)
	assert.Equal(t, 20, usage.OutputTokens)
	assert.Equal(t, 120, usage.TotalTokens)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		msg  string
		want *domainErrors.AppError
	}{
		{msg: "Error 429, Message: Resource has been exhausted (e.g. check quota)., Status: RESOURCE_EXHAUSTED", want: domainErrors.ErrQuotaExceeded},
		{msg: "Error 400, Message: API key not valid. Please pass a valid API key., Status: INVALID_ARGUMENT", want: domainErrors.ErrAPIKeyInvalid},
		{msg: "Error 403, Status: PERMISSION_DENIED", want: domainErrors.ErrAPIKeyInvalid},
		{msg: "Error 500, Message: internal", want: domainErrors.ErrAIGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.ErrorIs(t, mapError(errors.New(tt.msg)), tt.want)
		})
	}
}

func TestGetGenerateConfig(t *testing.T) {
	jsonCfg := GetGenerateConfig("gemini-2.5-flash", "application/json")
	assert.Equal(t, "application/json", jsonCfg.ResponseMIMEType)
	require.NotNil(t, jsonCfg.ThinkingConfig)

	plain := GetGenerateConfig("gemini-2.5-pro", "")
	assert.Empty(t, plain.ResponseMIMEType)
	assert.Nil(t, plain.ThinkingConfig)
}
