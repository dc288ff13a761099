package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driving"
	"github.com/custodia-labs/whistle-cli/internal/logger"
)

// Ensure IntakeService implements the interface.
var _ driving.IntakeService = (*IntakeService)(nil)

const (
	// idLength is the number of hex characters kept from the digest.
	idLength = 16

	// maxIDAttempts bounds re-salting after an id collision.
	maxIDAttempts = 3
)

// SaltFunc returns fresh salt for anonymised ids.
type SaltFunc func() ([]byte, error)

// RandomSalt draws 16 bytes from a random UUID.
func RandomSalt() ([]byte, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return id[:], nil
}

// SeededSalt returns a deterministic salt sequence for tests.
func SeededSalt(seed uint64) SaltFunc {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func() ([]byte, error) {
		buf := make([]byte, 16)
		binary.LittleEndian.PutUint64(buf[:8], rng.Uint64())
		binary.LittleEndian.PutUint64(buf[8:], rng.Uint64())
		return buf, nil
	}
}

// AnonymousID derives a complaint id from the text and a salt.
// The id cannot be traced back to the submitter.
func AnonymousID(text string, salt []byte) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write(salt)
	return hex.EncodeToString(h.Sum(nil))[:idLength]
}

// IntakeService validates, classifies and stores new complaints.
type IntakeService struct {
	analyzer driven.TextAnalyzer
	store    driven.ComplaintStore
	salt     SaltFunc
	now      func() time.Time
}

// NewIntakeService creates a new intake service.
func NewIntakeService(analyzer driven.TextAnalyzer, store driven.ComplaintStore) *IntakeService {
	return &IntakeService{
		analyzer: analyzer,
		store:    store,
		salt:     RandomSalt,
		now:      time.Now,
	}
}

// SetSalt replaces the salt source.
func (s *IntakeService) SetSalt(salt SaltFunc) {
	s.salt = salt
}

// SetClock replaces the time source.
func (s *IntakeService) SetClock(now func() time.Time) {
	s.now = now
}

// Submit classifies and stores a complaint. The text is stored exactly as
// given; surrounding whitespace only matters to validation.
// Analysis happens before any store access so no store state is held
// while a provider call is in flight.
func (s *IntakeService) Submit(ctx context.Context, text string) (*domain.Complaint, error) {
	logger.Section("Complaint Intake")

	analysis, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		logger.Warn("Analysis failed: %v", err)
		return nil, domain.ErrSubmissionFailed
	}
	logger.Debug("Analysis method: %s", analysis.Method)

	// Timestamps are coarsened to the hour.
	createdAt := s.now().UTC().Truncate(time.Hour)

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		salt, err := s.salt()
		if err != nil {
			logger.Warn("Salt generation failed: %v", err)
			return nil, domain.ErrSubmissionFailed
		}

		c := &domain.Complaint{
			ID:         AnonymousID(text, salt),
			Text:       text,
			Category:   analysis.Category,
			Urgency:    analysis.Urgency,
			SpamScore:  analysis.SpamScore,
			Sentiment:  analysis.Sentiment,
			Status:     domain.StatusPending,
			CreatedAt:  createdAt,
			Confidence: analysis.Confidence,
		}

		err = s.store.Append(ctx, c)
		if err == nil {
			logger.Info("Stored complaint %s (%s, %s)", c.ID, c.Category, c.Urgency)
			return c, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			logger.Warn("Store append failed: %v", err)
			return nil, domain.ErrSubmissionFailed
		}
		logger.Debug("ID collision on attempt %d, re-salting", attempt)
	}

	logger.Warn("Giving up after %d id collisions", maxIDAttempts)
	return nil, domain.ErrSubmissionFailed
}
