package driving

import (
	"context"
	"iter"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// QueryService gives operators read and review access to complaints.
// Every method requires an operator session in the context.
type QueryService interface {
	// Query returns the complaints matching spec as a lazy sequence.
	// The sequence can be ranged over more than once.
	Query(ctx context.Context, spec domain.FilterSpec) (iter.Seq[domain.Complaint], error)

	// Get retrieves one complaint.
	Get(ctx context.Context, id string) (*domain.Complaint, error)

	// UpdateStatus moves a complaint to a new review state.
	UpdateStatus(ctx context.Context, id string, status domain.Status, note string) (*domain.Complaint, error)

	// History returns the status changes of a complaint.
	History(ctx context.Context, id string) ([]domain.StatusChange, error)

	// Stats aggregates the complaints matching spec.
	Stats(ctx context.Context, spec domain.FilterSpec) (*domain.Stats, error)
}
