package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/logger"
)

// Ensure FallbackAnalyzer implements the interface.
var _ driven.TextAnalyzer = (*FallbackAnalyzer)(nil)

// FallbackAnalyzer tries a primary analyzer and falls back to the heuristic
// one on any failure. It never returns a provider error.
type FallbackAnalyzer struct {
	primary  driven.TextAnalyzer
	fallback *HeuristicAnalyzer
	factor   float64
}

// NewFallbackAnalyzer composes primary with the heuristic fallback.
// factor scales the fallback confidence; primary may be nil.
func NewFallbackAnalyzer(primary driven.TextAnalyzer, fallback *HeuristicAnalyzer, factor float64) *FallbackAnalyzer {
	if factor <= 0 || factor > 1 {
		factor = domain.DefaultFallbackFactor
	}
	return &FallbackAnalyzer{primary: primary, fallback: fallback, factor: factor}
}

// UnavailableAnalyzer stands in for a remote provider that could not be
// built. Every call fails, so a FallbackAnalyzer around it always degrades.
type UnavailableAnalyzer struct {
	reason string
}

// NewUnavailableAnalyzer returns an analyzer that fails with reason.
func NewUnavailableAnalyzer(reason string) *UnavailableAnalyzer {
	return &UnavailableAnalyzer{reason: reason}
}

// Analyze always returns ErrLLMUnavailable.
func (u *UnavailableAnalyzer) Analyze(context.Context, string) (*domain.Analysis, error) {
	return nil, fmt.Errorf("%w: %w: %s", domain.ErrProviderFailure, domain.ErrLLMUnavailable, u.reason)
}

// Analyze runs the primary analyzer, degrading to the heuristic on failure.
func (f *FallbackAnalyzer) Analyze(ctx context.Context, text string) (*domain.Analysis, error) {
	text, err := f.fallback.Limits().validate(text)
	if err != nil {
		return nil, err
	}
	if f.primary == nil {
		return f.fallback.Analyze(ctx, text)
	}

	a, err := f.primary.Analyze(ctx, text)
	if err == nil {
		return a, nil
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return nil, err
	}
	logger.Warn("Remote analysis failed, using heuristic: %v", err)

	a, err = f.fallback.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	a.Confidence = round3(a.Confidence * f.factor)
	a.Method = domain.MethodFallback
	return a, nil
}
