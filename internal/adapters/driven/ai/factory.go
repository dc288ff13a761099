// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	anthropicllm "github.com/custodia-labs/whistle-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/whistle-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/whistle-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	LLMService driven.LLMService
	Warnings   []string // Non-fatal issues that caused fallback.
	FellBack   bool     // True if remote analysis was wanted but is unavailable.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init builds the LLM service for remote analysis when it is enabled.
// Failures never abort startup: the heuristic analyzer keeps working and the
// reason is reported in Warnings.
func Init(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}
	if settings == nil || !settings.Analyzer.RemoteEnabled {
		return result
	}

	svc, err := CreateLLMService(&settings.LLM)
	if err != nil {
		result.FellBack = true
		result.Warnings = append(result.Warnings, err.Error())
		return result
	}
	if svc == nil {
		result.FellBack = true
		result.Warnings = append(result.Warnings,
			"remote analysis is enabled but no LLM provider is configured; using local heuristics")
		return result
	}

	result.LLMService = NewRateLimited(svc, settings.Analyzer.RequestsPerSecond)
	return result
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// RateLimited throttles completion calls of a wrapped LLM service.
type RateLimited struct {
	driven.LLMService
	limiter *rate.Limiter
}

// Ensure RateLimited implements the interface.
var _ driven.LLMService = (*RateLimited)(nil)

// NewRateLimited allows rps requests per second with a burst of one.
// A non-positive rps disables throttling.
func NewRateLimited(svc driven.LLMService, rps float64) *RateLimited {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RateLimited{LLMService: svc, limiter: rate.NewLimiter(limit, 1)}
}

// Complete waits for a token, then delegates.
func (r *RateLimited) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return r.LLMService.Complete(ctx, req)
}
