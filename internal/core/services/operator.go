package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driving"
	"github.com/custodia-labs/whistle-cli/internal/logger"
)

// Ensure OperatorService implements the interface.
var _ driving.OperatorService = (*OperatorService)(nil)

// Config keys for operator credentials.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyOperatorUsername = "operator.username"
	keyOperatorHash     = "operator.password_hash"
	keyOperatorSecret   = "operator.token_secret"
	keyOperatorTTL      = "operator.session_minutes"
)

// OperatorService authenticates the operator and persists their session.
type OperatorService struct {
	config   driven.ConfigStore
	hasher   driven.PasswordHasher
	tokens   driven.TokenIssuer
	sessions driven.SessionStore
	now      func() time.Time
}

// NewOperatorService creates a new operator service.
func NewOperatorService(
	config driven.ConfigStore,
	hasher driven.PasswordHasher,
	tokens driven.TokenIssuer,
	sessions driven.SessionStore,
) *OperatorService {
	return &OperatorService{
		config:   config,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *OperatorService) SetClock(now func() time.Time) {
	s.now = now
}

// IsConfigured reports whether operator credentials exist.
func (s *OperatorService) IsConfigured() bool {
	return s.config.GetString(keyOperatorHash) != ""
}

func (s *OperatorService) username() string {
	if u := s.config.GetString(keyOperatorUsername); u != "" {
		return u
	}
	return domain.DefaultOperatorUsername
}

func (s *OperatorService) sessionTTL() time.Duration {
	if m := s.config.GetInt(keyOperatorTTL); m > 0 {
		return time.Duration(m) * time.Minute
	}
	return domain.DefaultSessionTTL
}

// secret returns the token signing secret, creating one on first use.
func (s *OperatorService) secret() (string, error) {
	if secret := s.config.GetString(keyOperatorSecret); secret != "" {
		return secret, nil
	}
	return s.rotateSecret()
}

func (s *OperatorService) rotateSecret() (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", err
	}
	if err := s.config.Set(keyOperatorSecret, secret); err != nil {
		return "", fmt.Errorf("save token secret: %w", err)
	}
	return secret, nil
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Login checks credentials and stores a new session token.
func (s *OperatorService) Login(_ context.Context, username, password string) (*domain.Session, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("%w: operator credentials are not set up", domain.ErrAuthRequired)
	}

	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(s.username())) == 1
	passErr := s.hasher.Compare(s.config.GetString(keyOperatorHash), password)
	if !userOK || passErr != nil {
		logger.Warn("Failed operator login for %q", username)
		return nil, domain.ErrAuthInvalid
	}

	secret, err := s.secret()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &domain.Session{
		Operator:  s.username(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL()),
	}
	token, err := s.tokens.Issue(session, secret)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	if err := s.sessions.Save(token); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	logger.Info("Operator %s logged in until %s", session.Operator, session.ExpiresAt.Format(time.RFC3339))
	return session, nil
}

// Resume validates the stored token and returns a context carrying the session.
func (s *OperatorService) Resume(ctx context.Context) (context.Context, error) {
	token, err := s.sessions.Load()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ctx, domain.ErrAuthRequired
		}
		return ctx, fmt.Errorf("load session: %w", err)
	}

	secret := s.config.GetString(keyOperatorSecret)
	if secret == "" {
		return ctx, domain.ErrAuthRequired
	}
	session, err := s.tokens.Verify(token, secret, s.now())
	if err != nil {
		return ctx, err
	}
	return domain.ContextWithSession(ctx, session), nil
}

// Logout clears the stored session.
func (s *OperatorService) Logout() error {
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ChangeCredentials replaces the operator username and password.
// Existing sessions are invalidated by rotating the signing secret.
func (s *OperatorService) ChangeCredentials(_ context.Context, currentPassword, username, newPassword string) error {
	if s.IsConfigured() {
		if err := s.hasher.Compare(s.config.GetString(keyOperatorHash), currentPassword); err != nil {
			return domain.ErrAuthInvalid
		}
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = s.username()
	}
	if len(newPassword) < domain.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, domain.MinPasswordLength)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	secret, err := newSecret()
	if err != nil {
		return err
	}
	if err := s.config.SetAll(map[string]any{
		keyOperatorUsername: username,
		keyOperatorHash:     hash,
		keyOperatorSecret:   secret,
	}); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	logger.Info("Operator credentials updated for %s", username)
	return s.Logout()
}
