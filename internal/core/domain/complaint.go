package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the subject classification of a complaint.
type Category string

// Known complaint categories.
const (
	CategoryHarassment     Category = "Workplace Harassment"
	CategoryDiscrimination Category = "Discrimination"
	CategoryFraud          Category = "Fraud/Corruption"
	CategoryTechnical      Category = "Technical Issue"
	CategorySafety         Category = "Workplace Safety"
	CategoryPolicy         Category = "Policy Violation"
	CategoryOther          Category = "Other"
)

// AllCategories returns every category in tie-break priority order.
// When two categories score equally the one listed first wins.
func AllCategories() []Category {
	return []Category{
		CategoryHarassment,
		CategoryDiscrimination,
		CategoryFraud,
		CategorySafety,
		CategoryPolicy,
		CategoryTechnical,
		CategoryOther,
	}
}

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Slug returns a short lowercase identifier used in config keys and filenames.
func (c Category) Slug() string {
	switch c {
	case CategoryHarassment:
		return "harassment"
	case CategoryDiscrimination:
		return "discrimination"
	case CategoryFraud:
		return "fraud"
	case CategoryTechnical:
		return "technical"
	case CategorySafety:
		return "safety"
	case CategoryPolicy:
		return "policy"
	case CategoryOther:
		return "other"
	default:
		return ""
	}
}

// Priority returns the tie-break rank of the category (lower wins).
func (c Category) Priority() int {
	for i, known := range AllCategories() {
		if c == known {
			return i
		}
	}
	return len(AllCategories())
}

// ParseCategory accepts either the display name or the slug, case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range AllCategories() {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Slug()) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
}

// Urgency is the ordered severity of a complaint.
type Urgency string

// Urgency levels from least to most severe.
const (
	UrgencyLow      Urgency = "Low"
	UrgencyMedium   Urgency = "Medium"
	UrgencyHigh     Urgency = "High"
	UrgencyCritical Urgency = "Critical"
)

// AllUrgencies returns urgency levels in ascending order.
func AllUrgencies() []Urgency {
	return []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}
}

// Rank returns the ordinal of the level, 0 for Low. Unknown levels rank -1.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 0
	case UrgencyMedium:
		return 1
	case UrgencyHigh:
		return 2
	case UrgencyCritical:
		return 3
	default:
		return -1
	}
}

// IsValid returns true if the urgency is recognised.
func (u Urgency) IsValid() bool {
	return u.Rank() >= 0
}

// String returns the string representation.
func (u Urgency) String() string {
	return string(u)
}

// ParseUrgency parses an urgency level case-insensitively.
func ParseUrgency(s string) (Urgency, error) {
	s = strings.TrimSpace(s)
	for _, u := range AllUrgencies() {
		if strings.EqualFold(s, string(u)) {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w: unknown urgency %q", ErrInvalidInput, s)
}

// Status is the review state of a complaint. Only an operator changes it.
type Status string

// Review states.
const (
	StatusPending  Status = "Pending"
	StatusInReview Status = "In-Review"
	StatusResolved Status = "Resolved"
)

// AllStatuses returns the review states in workflow order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusInReview, StatusResolved}
}

// IsValid returns true if the status is recognised.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusResolved:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// ParseStatus parses a status case-insensitively. "in_review" and "review" are accepted.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "pending":
		return StatusPending, nil
	case "in-review", "in_review", "inreview", "review":
		return StatusInReview, nil
	case "resolved":
		return StatusResolved, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
	}
}

// SentimentLabel is the polarity bucket of a sentiment score.
type SentimentLabel string

// Sentiment labels.
const (
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
	SentimentPositive SentimentLabel = "Positive"
)

// IsValid returns true if the label is recognised.
func (l SentimentLabel) IsValid() bool {
	switch l {
	case SentimentNegative, SentimentNeutral, SentimentPositive:
		return true
	default:
		return false
	}
}

// ParseSentimentLabel parses a sentiment label case-insensitively.
func ParseSentimentLabel(s string) (SentimentLabel, error) {
	for _, l := range []SentimentLabel{SentimentNegative, SentimentNeutral, SentimentPositive} {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown sentiment %q", ErrInvalidInput, s)
}

// Sentiment is the emotional tone of a complaint.
type Sentiment struct {
	Label     SentimentLabel `json:"label"`
	Magnitude float64        `json:"magnitude"`
}

// Complaint is one anonymously submitted record.
// Category, Urgency, Sentiment, SpamScore and Confidence are fixed at intake.
type Complaint struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Category   Category  `json:"category"`
	Urgency    Urgency   `json:"urgency"`
	SpamScore  float64   `json:"spam_score"`
	Sentiment  Sentiment `json:"sentiment"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	Confidence float64   `json:"confidence"`
}

// IsFlaggedSpam reports whether the spam score exceeds the threshold.
func (c *Complaint) IsFlaggedSpam(threshold float64) bool {
	return c.SpamScore > threshold
}

// IsSuggested reports whether the classification is below the confidence floor
// and should be presented as a suggestion.
func (c *Complaint) IsSuggested(minConfidence float64) bool {
	return c.Confidence < minConfidence
}

// Validate checks that the record satisfies the persisted invariants.
func (c *Complaint) Validate() error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidInput)
	case !c.Category.IsValid():
		return fmt.Errorf("%w: invalid category %q", ErrInvalidInput, c.Category)
	case !c.Urgency.IsValid():
		return fmt.Errorf("%w: invalid urgency %q", ErrInvalidInput, c.Urgency)
	case !c.Status.IsValid():
		return fmt.Errorf("%w: invalid status %q", ErrInvalidInput, c.Status)
	case c.SpamScore < 0 || c.SpamScore > 1:
		return fmt.Errorf("%w: spam score out of range", ErrInvalidInput)
	case c.Confidence < 0 || c.Confidence > 1:
		return fmt.Errorf("%w: confidence out of range", ErrInvalidInput)
	}
	return nil
}

// StatusChange records one operator status transition.
type StatusChange struct {
	ComplaintID string    `json:"complaint_id"`
	From        Status    `json:"from"`
	To          Status    `json:"to"`
	Note        string    `json:"note,omitempty"`
	ChangedAt   time.Time `json:"changed_at"`
}
