package driving

import (
	"context"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// OperatorService authenticates operators and manages their session.
type OperatorService interface {
	// Login checks credentials, stores a session token and returns the session.
	Login(ctx context.Context, username, password string) (*domain.Session, error)

	// Resume validates the stored token and returns a context carrying the session.
	Resume(ctx context.Context) (context.Context, error)

	// Logout clears the stored session.
	Logout() error

	// ChangeCredentials replaces the operator username and password.
	// The current password must be supplied unless no credentials exist yet.
	ChangeCredentials(ctx context.Context, currentPassword, username, newPassword string) error

	// IsConfigured reports whether operator credentials exist.
	IsConfigured() bool
}
