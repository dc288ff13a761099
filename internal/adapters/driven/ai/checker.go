package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

var _ driven.LLMChecker = (*Checker)(nil)

// Checker pings the provider named by LLM settings.
type Checker struct {
	timeout time.Duration
}

// NewChecker returns a checker that gives each ping pingTimeout.
func NewChecker() *Checker {
	return &Checker{timeout: pingTimeout}
}

// Check builds a throwaway service for settings and pings it. Failures wrap
// domain.ErrLLMUnavailable.
func (c *Checker) Check(ctx context.Context, settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err = svc.Ping(ctx)
	switch {
	case err == nil:
		return nil
	case driven.IsAuthError(err):
		return fmt.Errorf("%w: %s rejected the API key, run 'whistle settings llm' to replace it",
			domain.ErrLLMUnavailable, settings.Provider)
	default:
		return fmt.Errorf("%w: %s is unreachable: %w", domain.ErrLLMUnavailable, settings.Provider, err)
	}
}
