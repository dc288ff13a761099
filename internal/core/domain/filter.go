package domain

import (
	"fmt"
	"strings"
	"time"
)

// SortKey selects the ordering of query results.
type SortKey string

// Supported sort keys. SortNone keeps insertion order.
const (
	SortNone       SortKey = ""
	SortCreatedAt  SortKey = "created_at"
	SortUrgency    SortKey = "urgency"
	SortSpamScore  SortKey = "spam_score"
	SortConfidence SortKey = "confidence"
	SortCategory   SortKey = "category"
)

// IsValid returns true if the sort key is recognised.
func (k SortKey) IsValid() bool {
	switch k {
	case SortNone, SortCreatedAt, SortUrgency, SortSpamScore, SortConfidence, SortCategory:
		return true
	default:
		return false
	}
}

// FilterSpec is a conjunction of optional predicates over complaints.
// Zero values mean "no constraint" except IncludeFlaggedSpam, which
// defaults to excluding records above the spam threshold.
type FilterSpec struct {
	Category *Category
	Status   *Status
	Urgency  *Urgency

	// MinUrgency keeps records at or above the given level.
	MinUrgency *Urgency

	// From and To bound CreatedAt inclusively.
	From *time.Time
	To   *time.Time

	MinConfidence *float64

	IncludeFlaggedSpam bool

	// Text is a case-insensitive substring matched against complaint text.
	Text string

	Sort SortKey
	Desc bool

	// Limit caps the number of results. Zero means unlimited.
	Limit int
}

// Validate checks the filter for contradictory or unknown values.
func (f FilterSpec) Validate() error {
	if f.Category != nil && !f.Category.IsValid() {
		return fmt.Errorf("%w: invalid category filter %q", ErrInvalidInput, *f.Category)
	}
	if f.Status != nil && !f.Status.IsValid() {
		return fmt.Errorf("%w: invalid status filter %q", ErrInvalidInput, *f.Status)
	}
	if f.Urgency != nil && !f.Urgency.IsValid() {
		return fmt.Errorf("%w: invalid urgency filter %q", ErrInvalidInput, *f.Urgency)
	}
	if f.MinUrgency != nil && !f.MinUrgency.IsValid() {
		return fmt.Errorf("%w: invalid minimum urgency %q", ErrInvalidInput, *f.MinUrgency)
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return fmt.Errorf("%w: date range start is after end", ErrInvalidInput)
	}
	if f.MinConfidence != nil && (*f.MinConfidence < 0 || *f.MinConfidence > 1) {
		return fmt.Errorf("%w: minimum confidence must be within [0, 1]", ErrInvalidInput)
	}
	if !f.Sort.IsValid() {
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidInput, f.Sort)
	}
	if f.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	return nil
}

// Matches reports whether c satisfies every predicate of the filter.
func (f FilterSpec) Matches(c *Complaint, spamThreshold float64) bool {
	if f.Category != nil && c.Category != *f.Category {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.Urgency != nil && c.Urgency != *f.Urgency {
		return false
	}
	if f.MinUrgency != nil && c.Urgency.Rank() < f.MinUrgency.Rank() {
		return false
	}
	if f.From != nil && c.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && c.CreatedAt.After(*f.To) {
		return false
	}
	if f.MinConfidence != nil && c.Confidence < *f.MinConfidence {
		return false
	}
	if !f.IncludeFlaggedSpam && c.IsFlaggedSpam(spamThreshold) {
		return false
	}
	if f.Text != "" && !strings.Contains(strings.ToLower(c.Text), strings.ToLower(f.Text)) {
		return false
	}
	return true
}

// Describe returns a short human-readable summary of the active predicates.
func (f FilterSpec) Describe() string {
	var parts []string
	if f.Category != nil {
		parts = append(parts, "category="+f.Category.String())
	}
	if f.Status != nil {
		parts = append(parts, "status="+f.Status.String())
	}
	if f.Urgency != nil {
		parts = append(parts, "urgency="+f.Urgency.String())
	}
	if f.MinUrgency != nil {
		parts = append(parts, "urgency>="+f.MinUrgency.String())
	}
	if f.From != nil {
		parts = append(parts, "from="+f.From.Format(time.DateOnly))
	}
	if f.To != nil {
		parts = append(parts, "to="+f.To.Format(time.DateOnly))
	}
	if f.MinConfidence != nil {
		parts = append(parts, fmt.Sprintf("confidence>=%.2f", *f.MinConfidence))
	}
	if f.IncludeFlaggedSpam {
		parts = append(parts, "spam=included")
	}
	if f.Text != "" {
		parts = append(parts, fmt.Sprintf("text=%q", f.Text))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ", ")
}

// Ptr returns a pointer to v. Handy for building filter specs.
func Ptr[T any](v T) *T {
	return &v
}
