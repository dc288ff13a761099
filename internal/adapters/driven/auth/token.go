package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// Ensure JWTIssuer implements the interface.
var _ driven.TokenIssuer = (*JWTIssuer)(nil)

// Issuer is the iss claim of every session token.
const Issuer = "whistle"

// JWTIssuer signs operator sessions as HS256 JSON Web Tokens.
type JWTIssuer struct{}

// NewJWTIssuer creates a token issuer.
func NewJWTIssuer() *JWTIssuer {
	return &JWTIssuer{}
}

// Issue signs the session with secret.
func (JWTIssuer) Issue(s *domain.Session, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: empty token secret", domain.ErrInvalidInput)
	}
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   s.Operator,
		IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry as of now.
func (JWTIssuer) Verify(tokenString, secret string, now time.Time) (*domain.Session, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrAuthExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthInvalid, err)
	case !token.Valid || claims.Subject == "":
		return nil, domain.ErrAuthInvalid
	}

	s := &domain.Session{
		Operator:  claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return s, nil
}
