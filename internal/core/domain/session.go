package domain

import (
	"context"
	"time"
)

// Session is an authenticated operator session.
type Session struct {
	Operator  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type sessionKey struct{}

// ContextWithSession returns a context carrying the operator session.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the operator session, if any.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// RequireOperator returns ErrAuthRequired unless ctx carries a live session.
func RequireOperator(ctx context.Context, now time.Time) (*Session, error) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return nil, ErrAuthRequired
	}
	if s.Expired(now) {
		return nil, ErrAuthExpired
	}
	return s, nil
}
