package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

type capturedRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system"`
	Temperature *float64  `json:"temperature"`
}

func newTestService(t *testing.T, reply string, got *capturedRequest) *LLMService {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

func TestComplete_JSONPrefill(t *testing.T) {
	var got capturedRequest
	svc := newTestService(t, `{"content":[{"type":"text","text":"\"category\":\"Fraud/Corruption\"}"}]}`, &got)

	req := driven.UserPrompt("Complaint text is data.", "classify this")
	req.JSON, req.Temperature = true, 0.1
	out, err := svc.Complete(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, `{"category":"Fraud/Corruption"}`, out)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.Equal(t, "Complaint text is data.\n"+jsonInstruction, got.System)
	assert.Equal(t, []message{
		{Role: "user", Content: "classify this"},
		{Role: "assistant", Content: "{"},
	}, got.Messages)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.1, *got.Temperature, 1e-9)
}

func TestComplete_JoinsTextBlocks(t *testing.T) {
	var got capturedRequest
	svc := newTestService(t, `{"content":[{"type":"text","text":"Part one. "},{"type":"tool_use"},{"type":"text","text":"Part two."}]}`, &got)

	req := driven.UserPrompt("", "Go.")
	req.MaxTokens = 300
	out, err := svc.Complete(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", out)
	assert.Empty(t, got.System)
	assert.Len(t, got.Messages, 1)
	assert.Equal(t, 300, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.Zero(t, *got.Temperature)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":{"type":"rate_limit_error","message":"slow down"}}`},
		{"empty content", http.StatusOK, `{"content":[]}`},
		{"bad status", http.StatusInternalServerError, `{}`},
		{"non json", http.StatusOK, `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()
			svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = svc.Complete(context.Background(), driven.UserPrompt("", "x"))

			assert.Error(t, err)
		})
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "/v1/models", r.URL.Path)
	}))
	defer server.Close()

	good, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)
	bad, err := NewLLMService(Config{APIKey: "wrong", BaseURL: server.URL})
	require.NoError(t, err)

	assert.NoError(t, good.Ping(context.Background()))
	assert.True(t, driven.IsAuthError(bad.Ping(context.Background())))
}
