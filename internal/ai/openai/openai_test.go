package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/ticketmate/internal/config"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewProvider(config.AIProviderConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1/"}, server.Client())
	require.NoError(t, err)
	return provider
}

func TestProvider_Call(t *testing.T) {
	t.Run("Success - system and user messages", func(t *testing.T) {
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, &payload))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o",
				"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"status\":\"ready\"}"}}],
				"usage": {"prompt_tokens": 9, "completion_tokens": 3, "total_tokens": 12}
			}`))
		})

		reply, err := provider.Call(context.Background(), "system", "user")

		require.NoError(t, err)
		assert.Equal(t, `{"status":"ready"}`, reply)
		assert.Equal(t, "gpt-4o", payload.Model)
		require.Len(t, payload.Messages, 2)
		assert.Equal(t, "system", payload.Messages[0].Role)
		assert.Equal(t, "system", payload.Messages[0].Content)
		assert.Equal(t, "user", payload.Messages[1].Role)
		assert.Equal(t, "user", payload.Messages[1].Content)
	})

	t.Run("Error - status mapping without retries", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			want   *apperrors.AppError
		}{
			{name: "unauthorized", status: http.StatusUnauthorized, want: apperrors.ErrAPIKeyInvalid},
			{name: "rate limited", status: http.StatusTooManyRequests, want: apperrors.ErrQuotaExceeded},
			{name: "server error", status: http.StatusInternalServerError, want: apperrors.ErrAIGeneration},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				calls := 0
				provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
					calls++
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"error"}}`))
				})

				_, err := provider.Call(context.Background(), "s", "u")

				assert.ErrorIs(t, err, tt.want)
				assert.Equal(t, 1, calls)
			})
		}
	})

	t.Run("Error - empty choices", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`))
		})

		_, err := provider.Call(context.Background(), "s", "u")

		assert.ErrorIs(t, err, apperrors.ErrEmptyAIResponse)
	})
}

func TestNewProvider_MissingKey(t *testing.T) {
	_, err := NewProvider(config.AIProviderConfig{}, nil)
	assert.ErrorIs(t, err, apperrors.ErrAPIKeyMissing)
}

func TestFactory(t *testing.T) {
	f := NewFactory(nil)

	assert.Equal(t, "openai", f.Name())
	assert.NoError(t, f.ValidateConfig(config.AIProviderConfig{BaseURL: "http://localhost:11434/v1"}))
	assert.ErrorIs(t, f.ValidateConfig(config.AIProviderConfig{BaseURL: "localhost:11434"}), apperrors.ErrInvalidConfig)

	p, err := f.CreateProvider(context.Background(), config.AIProviderConfig{})
	assert.Error(t, err)
	assert.True(t, p == nil)
}
