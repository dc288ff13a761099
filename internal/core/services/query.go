package services

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driving"
	"github.com/custodia-labs/whistle-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService filters and reviews stored complaints.
type QueryService struct {
	store         driven.ComplaintStore
	spamThreshold float64
	now           func() time.Time
}

// NewQueryService creates a new query service.
// Complaints with a spam score above spamThreshold are hidden unless requested.
func NewQueryService(store driven.ComplaintStore, spamThreshold float64) *QueryService {
	return &QueryService{store: store, spamThreshold: spamThreshold, now: time.Now}
}

// SetClock replaces the time source used for session checks and history.
func (s *QueryService) SetClock(now func() time.Time) {
	s.now = now
}

// Query returns the complaints matching spec.
// The predicate is evaluated while iterating, and each range walks the
// snapshot taken at call time again from the start.
func (s *QueryService) Query(ctx context.Context, spec domain.FilterSpec) (iter.Seq[domain.Complaint], error) {
	if _, err := domain.RequireOperator(ctx, s.now()); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load complaints: %w", err)
	}
	logger.Debug("Query over %d complaints: %s", len(snapshot), spec.Describe())

	if spec.Sort == domain.SortNone {
		return s.filtered(snapshot, spec), nil
	}
	return s.sorted(snapshot, spec), nil
}

func (s *QueryService) filtered(snapshot []domain.Complaint, spec domain.FilterSpec) iter.Seq[domain.Complaint] {
	return func(yield func(domain.Complaint) bool) {
		n := 0
		for i := range snapshot {
			if !spec.Matches(&snapshot[i], s.spamThreshold) {
				continue
			}
			if !yield(snapshot[i]) {
				return
			}
			n++
			if spec.Limit > 0 && n >= spec.Limit {
				return
			}
		}
	}
}

func (s *QueryService) sorted(snapshot []domain.Complaint, spec domain.FilterSpec) iter.Seq[domain.Complaint] {
	return func(yield func(domain.Complaint) bool) {
		matched := slices.Collect(s.filtered(snapshot, domain.FilterSpec{
			Category:           spec.Category,
			Status:             spec.Status,
			Urgency:            spec.Urgency,
			MinUrgency:         spec.MinUrgency,
			From:               spec.From,
			To:                 spec.To,
			MinConfidence:      spec.MinConfidence,
			IncludeFlaggedSpam: spec.IncludeFlaggedSpam,
			Text:               spec.Text,
		}))
		slices.SortStableFunc(matched, compareBy(spec.Sort, spec.Desc))
		for i, c := range matched {
			if spec.Limit > 0 && i >= spec.Limit {
				return
			}
			if !yield(c) {
				return
			}
		}
	}
}

// compareBy orders on key, then by creation time ascending.
func compareBy(key domain.SortKey, desc bool) func(a, b domain.Complaint) int {
	primary := func(a, b domain.Complaint) int {
		switch key {
		case domain.SortUrgency:
			return cmp.Compare(a.Urgency.Rank(), b.Urgency.Rank())
		case domain.SortSpamScore:
			return cmp.Compare(a.SpamScore, b.SpamScore)
		case domain.SortConfidence:
			return cmp.Compare(a.Confidence, b.Confidence)
		case domain.SortCategory:
			return cmp.Compare(a.Category.Priority(), b.Category.Priority())
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	return func(a, b domain.Complaint) int {
		c := primary(a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Get retrieves one complaint.
func (s *QueryService) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	if _, err := domain.RequireOperator(ctx, s.now()); err != nil {
		return nil, err
	}
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get complaint %s: %w", id, err)
	}
	return c, nil
}

// UpdateStatus moves a complaint to a new review state and records the change.
func (s *QueryService) UpdateStatus(
	ctx context.Context, id string, status domain.Status, note string,
) (*domain.Complaint, error) {
	session, err := domain.RequireOperator(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get complaint %s: %w", id, err)
	}

	change := domain.StatusChange{
		ComplaintID: id,
		From:        current.Status,
		To:          status,
		Note:        note,
		ChangedAt:   s.now().UTC(),
	}
	if err := s.store.UpdateStatus(ctx, change); err != nil {
		return nil, fmt.Errorf("update status of %s: %w", id, err)
	}
	logger.Info("Operator %s moved %s from %s to %s", session.Operator, id, change.From, change.To)

	current.Status = status
	return current, nil
}

// History returns the status changes of a complaint.
func (s *QueryService) History(ctx context.Context, id string) ([]domain.StatusChange, error) {
	if _, err := domain.RequireOperator(ctx, s.now()); err != nil {
		return nil, err
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, fmt.Errorf("get complaint %s: %w", id, err)
	}
	return s.store.History(ctx, id)
}

// Stats aggregates the complaints matching spec.
// Flagged spam is always counted, so the spam total stays visible.
func (s *QueryService) Stats(ctx context.Context, spec domain.FilterSpec) (*domain.Stats, error) {
	spec.IncludeFlaggedSpam = true
	seq, err := s.Query(ctx, spec)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(slices.Collect(seq), s.spamThreshold)
	return &stats, nil
}
