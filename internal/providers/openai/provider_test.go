package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-assistant/internal/assistant"
	"estate-assistant/internal/common/logger"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "Your watch is in the vault."}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 20, "completion_tokens": 8, "total_tokens": 28}
}`

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newProvider(t *testing.T, baseURL string) *Provider {
	return New(&Config{APIKey: "sk-test", BaseURL: baseURL + "/v1", Model: "gpt-4o-mini", MaxTokens: 300}, logger.NewTestLogger(t))
}

func TestProvider_NotConfigured(t *testing.T) {
	p := New(&Config{Model: "gpt-4o-mini"}, logger.NewNoOpLogger())
	assert.False(t, p.Configured())
	assert.Equal(t, Name, p.Name())
	assert.Equal(t, DisplayName, p.DisplayName())

	_, err := p.Generate(context.Background(), "hello", "")
	assert.ErrorIs(t, err, assistant.ErrProviderNotConfigured)
}

func TestProvider_Generate(t *testing.T) {
	var body struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	})

	p := newProvider(t, server.URL)
	require.True(t, p.Configured())

	reply, err := p.Generate(context.Background(), "Where is the Watch?", "Current assets: Watch (Collectible) - $10,000 - Location: Vault")
	require.NoError(t, err)
	assert.Equal(t, "Your watch is in the vault.", reply)

	assert.Equal(t, "gpt-4o-mini", body.Model)
	assert.Equal(t, 300, body.MaxTokens)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Contains(t, body.Messages[0].Content, "Location: Vault")
	assert.Equal(t, "user", body.Messages[1].Role)
	assert.Equal(t, "Where is the Watch?", body.Messages[1].Content)
}

func TestProvider_Generate_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectedErr error
	}{
		{
			name:        "api error",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"message":"invalid key","type":"invalid_request_error"}}`,
			expectedErr: assistant.ErrUpstreamStatus,
		},
		{
			name:        "server error",
			status:      http.StatusBadGateway,
			body:        `upstream failed`,
			expectedErr: assistant.ErrUpstreamStatus,
		},
		{
			name:        "no choices",
			status:      http.StatusOK,
			body:        `{"id":"x","object":"chat.completion","choices":[]}`,
			expectedErr: assistant.ErrUpstreamMalformed,
		},
		{
			name:        "empty content",
			status:      http.StatusOK,
			body:        `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":""}}]}`,
			expectedErr: assistant.ErrUpstreamMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := newProvider(t, server.URL).Generate(context.Background(), "hello", "")
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestProvider_Generate_Timeout(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newProvider(t, server.URL).Generate(ctx, "hello", "")
	assert.ErrorIs(t, err, assistant.ErrUpstreamTimeout)
}
