package driven

import (
	"context"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// ComplaintStore persists complaints and their status history.
// Records are never deleted; All returns them in insertion order.
type ComplaintStore interface {
	// Append stores a new complaint.
	// Returns domain.ErrAlreadyExists if the id is taken.
	Append(ctx context.Context, c *domain.Complaint) error

	// Get retrieves a complaint by id.
	// Returns domain.ErrNotFound if the complaint does not exist.
	Get(ctx context.Context, id string) (*domain.Complaint, error)

	// UpdateStatus changes the status of a complaint and records the change.
	// Returns domain.ErrNotFound without mutating anything if the id is unknown.
	UpdateStatus(ctx context.Context, change domain.StatusChange) error

	// All returns a snapshot of every complaint in insertion order.
	All(ctx context.Context) ([]domain.Complaint, error)

	// History returns the status changes of a complaint, oldest first.
	History(ctx context.Context, id string) ([]domain.StatusChange, error)

	// Close releases resources.
	Close() error
}
