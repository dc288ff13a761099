package driven

import (
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// PasswordHasher hashes and verifies operator passwords.
type PasswordHasher interface {
	// Hash returns an encoded hash of the password.
	Hash(password string) (string, error)

	// Compare returns domain.ErrAuthInvalid if password does not match hash.
	Compare(hash, password string) error
}

// TokenIssuer signs and verifies operator session tokens.
type TokenIssuer interface {
	// Issue returns a signed token for the session.
	Issue(session *domain.Session, secret string) (string, error)

	// Verify parses a token and returns its session.
	// Returns domain.ErrAuthExpired or domain.ErrAuthInvalid on failure.
	Verify(token, secret string, now time.Time) (*domain.Session, error)
}

// SessionStore persists the current operator token between invocations.
type SessionStore interface {
	// Save stores the token.
	Save(token string) error

	// Load returns the stored token.
	// Returns domain.ErrNotFound if no session is stored.
	Load() (string, error)

	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear() error
}
