package driven

import (
	"context"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// LLMChecker verifies LLM settings against the live provider.
type LLMChecker interface {
	// Check returns nil when settings name no provider.
	Check(ctx context.Context, settings *domain.LLMSettings) error
}
