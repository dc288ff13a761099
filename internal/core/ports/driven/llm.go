// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"
	"errors"
	"fmt"
)

// LLMService sends completion requests to a language model provider.
// It is optional: with no service configured the local analyzer and the
// local narrative are used.
type LLMService interface {
	// Complete returns the model's reply to req.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// ModelName returns the configured model.
	ModelName() string

	// Ping checks the provider is reachable without running inference.
	Ping(ctx context.Context) error

	Close() error
}

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a completion request.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a provider-neutral completion request.
type CompletionRequest struct {
	// System holds instructions kept apart from the user content. Complaint
	// text always travels in Messages, never here.
	System string

	Messages []Message

	// MaxTokens caps the reply. Zero leaves the provider default.
	MaxTokens int

	// Temperature is always sent, so zero means deterministic.
	Temperature float64

	// JSON asks for a single JSON object reply.
	JSON bool
}

// UserPrompt builds a request with a single user message.
func UserPrompt(system, prompt string) CompletionRequest {
	return CompletionRequest{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

// ProviderError is a non-success reply from an LLM provider.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
}

// IsAuthError reports whether err is a provider rejecting the API key.
func IsAuthError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && (pe.Status == 401 || pe.Status == 403)
}
