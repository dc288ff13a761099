package driven

import (
	"context"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// RuleStore loads the keyword tables of the heuristic analyzer.
type RuleStore interface {
	// Load returns the current rules, creating defaults if none exist.
	Load() (*domain.Rules, error)

	// Watch calls onChange with freshly loaded rules whenever the source changes.
	// Invalid updates are reported through onError and the previous rules stay active.
	// Watch blocks until ctx is cancelled.
	Watch(ctx context.Context, onChange func(*domain.Rules), onError func(error)) error

	// Path returns the location of the rules file.
	Path() string
}
