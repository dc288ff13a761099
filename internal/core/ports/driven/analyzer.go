package driven

import (
	"context"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// TextAnalyzer classifies complaint text.
// Implementations must reject empty or over-long text with domain.ErrInvalidInput
// before doing any work.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (*domain.Analysis, error)
}
