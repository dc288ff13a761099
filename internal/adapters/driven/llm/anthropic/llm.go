// Package anthropic is an LLM adapter for the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Defaults.
const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-haiku-latest"
	DefaultTimeout = 120 * time.Second
)

const (
	provider         = "anthropic"
	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 1024
	maxErrorBody     = 512

	jsonInstruction = "Respond with a single JSON object and nothing else."
)

// Config configures the adapter. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService talks to /v1/messages.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates the adapter.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", provider)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Complete sends req as one Messages call.
//
// The API has no JSON mode. A JSON request appends an instruction to the
// system prompt and prefills the reply with "{", which is put back on the
// returned text.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	body := messagesRequest{
		Model:       s.model,
		System:      req.System,
		Messages:    make([]message, 0, len(req.Messages)+1),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if body.MaxTokens <= 0 {
		body.MaxTokens = defaultMaxTokens
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, message{Role: string(m.Role), Content: m.Content})
	}
	prefill := ""
	if req.JSON {
		body.System = strings.TrimSpace(body.System + "\n" + jsonInstruction)
		prefill = "{"
		body.Messages = append(body.Messages, message{Role: string(driven.RoleAssistant), Content: prefill})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	s.authorize(httpReq)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out messagesResponse
	decodeErr := json.Unmarshal(raw, &out)
	switch {
	case out.Error != nil:
		return "", &driven.ProviderError{Provider: provider, Status: resp.StatusCode, Message: out.Error.Message}
	case resp.StatusCode != http.StatusOK:
		return "", &driven.ProviderError{Provider: provider, Status: resp.StatusCode, Message: truncate(raw)}
	case decodeErr != nil:
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", &driven.ProviderError{Provider: provider, Message: "no text content returned"}
	}
	return prefill + text.String(), nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create ping request: %w", provider, err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: ping: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &driven.ProviderError{Provider: provider, Status: resp.StatusCode, Message: truncate(raw)}
	}
	return nil
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}

func (s *LLMService) authorize(req *http.Request) {
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return strings.TrimSpace(string(b))
}
