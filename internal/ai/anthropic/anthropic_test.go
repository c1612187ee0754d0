package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
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
	return NewProvider(config.AIProviderConfig{APIKey: "sk-ant-test", BaseURL: server.URL}, server.Client())
}

func TestProvider_Call(t *testing.T) {
	t.Run("Success - joins text blocks", func(t *testing.T) {
		var received messagesRequest
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
			assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &received))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"model": "claude-sonnet-4-5",
				"stop_reason": "end_turn",
				"content": [{"type":"text","text":"{\"status\":"},{"type":"text","text":"\"ready\"}"}],
				"usage": {"input_tokens": 120, "output_tokens": 15}
			}`))
		})

		reply, err := provider.Call(context.Background(), "system rules", "user request")

		require.NoError(t, err)
		assert.Equal(t, `{"status":"ready"}`, reply)
		assert.Equal(t, "claude-sonnet-4-5", received.Model)
		assert.Equal(t, "system rules", received.System)
		assert.Equal(t, []message{{Role: "user", Content: "user request"}}, received.Messages)
		assert.Equal(t, defaultMaxTokens, received.MaxTokens)
	})

	t.Run("Error - status mapping", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			body   string
			want   *apperrors.AppError
		}{
			{name: "unauthorized", status: 401, body: `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, want: apperrors.ErrAPIKeyInvalid},
			{name: "rate limited", status: 429, body: `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, want: apperrors.ErrQuotaExceeded},
			{name: "overloaded", status: 529, body: `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, want: apperrors.ErrQuotaExceeded},
			{name: "bad request", status: 400, body: `{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens too large"}}`, want: apperrors.ErrAIGeneration},
			{name: "non json body", status: 502, body: `bad gateway`, want: apperrors.ErrAIGeneration},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(tt.body))
				})

				_, err := provider.Call(context.Background(), "s", "u")

				require.Error(t, err)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})

	t.Run("Error - detail carries API message", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(400)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"model not found"}}`))
		})

		_, err := provider.Call(context.Background(), "s", "u")

		assert.Contains(t, err.Error(), "model not found")
	})

	t.Run("Error - empty reply", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"content":[],"stop_reason":"max_tokens"}`))
		})

		_, err := provider.Call(context.Background(), "s", "u")

		assert.ErrorIs(t, err, apperrors.ErrEmptyAIResponse)
	})

	t.Run("Error - transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		provider := NewProvider(config.AIProviderConfig{APIKey: "k", BaseURL: server.URL}, nil)

		_, err := provider.Call(context.Background(), "s", "u")

		assert.ErrorIs(t, err, apperrors.ErrAIGeneration)
	})
}

func TestFactory(t *testing.T) {
	f := NewFactory(nil)

	assert.Equal(t, "anthropic", f.Name())
	assert.NoError(t, f.ValidateConfig(config.AIProviderConfig{}))
	assert.Error(t, f.ValidateConfig(config.AIProviderConfig{BaseURL: "::nope"}))

	p, err := f.CreateProvider(context.Background(), config.AIProviderConfig{APIKey: "k", Model: config.ModelClaudeHaiku45})
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5", p.GetModelName())
	assert.Equal(t, "anthropic", p.GetProviderName())
}
