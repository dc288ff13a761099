package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/logger"
)

// Ensure Narrator implements the interface.
var _ driven.PromptStoreAware = (*Narrator)(nil)

const (
	// trendRatio is the change between halves of the period that counts as a trend.
	trendRatio = 1.2

	narrateMaxTokens = 400
)

// ComputeStats aggregates a complaint set.
func ComputeStats(records []domain.Complaint, spamThreshold float64) domain.Stats {
	s := domain.Stats{
		Total:      len(records),
		ByCategory: make(map[domain.Category]int),
		ByUrgency:  make(map[domain.Urgency]int),
		ByStatus:   make(map[domain.Status]int),
	}
	if len(records) == 0 {
		return s
	}

	var confidence, spam float64
	s.First, s.Last = records[0].CreatedAt, records[0].CreatedAt
	for i := range records {
		c := &records[i]
		s.ByCategory[c.Category]++
		s.ByUrgency[c.Urgency]++
		s.ByStatus[c.Status]++
		if c.IsFlaggedSpam(spamThreshold) {
			s.FlaggedSpam++
		}
		confidence += c.Confidence
		spam += c.SpamScore
		if c.CreatedAt.Before(s.First) {
			s.First = c.CreatedAt
		}
		if c.CreatedAt.After(s.Last) {
			s.Last = c.CreatedAt
		}
	}
	s.AvgConfidence = round3(confidence / float64(len(records)))
	s.AvgSpamScore = round3(spam / float64(len(records)))
	s.PerMonth = round3(float64(len(records)) / float64(monthsSpanned(s.First, s.Last)))
	return s
}

// monthsSpanned counts calendar months from first to last inclusive.
func monthsSpanned(first, last time.Time) int {
	first, last = first.UTC(), last.UTC()
	return (last.Year()-first.Year())*12 + int(last.Month()-first.Month()) + 1
}

// Summarize computes the aggregates of an executive summary.
// The narrative is left empty; see Narrator.
func Summarize(records []domain.Complaint, spamThreshold float64, now time.Time) *domain.Summary {
	sum := &domain.Summary{
		Stats:       ComputeStats(records, spamThreshold),
		Direction:   domain.TrendStable,
		GeneratedAt: now,
	}
	if len(records) == 0 {
		return sum
	}

	perDay := make(map[time.Time]int)
	for i := range records {
		c := &records[i]
		perDay[truncateDay(c.CreatedAt)]++
		if c.Urgency == domain.UrgencyCritical {
			sum.Critical = append(sum.Critical, c.ID)
		}
	}
	for day := truncateDay(sum.Stats.First); !day.After(truncateDay(sum.Stats.Last)); day = day.AddDate(0, 0, 1) {
		sum.Trend = append(sum.Trend, domain.TrendPoint{Day: day, Count: perDay[day]})
	}
	sum.Direction = trendDirection(sum.Trend)
	return sum
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// trendDirection compares the first and second half of the daily counts.
func trendDirection(points []domain.TrendPoint) domain.TrendDirection {
	if len(points) < 2 {
		return domain.TrendStable
	}
	mid := len(points) / 2
	var early, late int
	for i, p := range points {
		if i < mid {
			early += p.Count
		} else if i >= len(points)-mid {
			late += p.Count
		}
	}
	switch {
	case float64(late) > float64(early)*trendRatio:
		return domain.TrendRising
	case float64(late)*trendRatio < float64(early):
		return domain.TrendFalling
	default:
		return domain.TrendStable
	}
}

// FormatFigures renders summary aggregates as plain lines, used both as
// model input and in local reports.
func FormatFigures(s *domain.Summary) string {
	var b strings.Builder
	st := &s.Stats
	fmt.Fprintf(&b, "Total complaints: %d\n", st.Total)
	if st.Total > 0 {
		fmt.Fprintf(&b, "Period: %s to %s\n", st.First.Format(time.DateOnly), st.Last.Format(time.DateOnly))
	}
	b.WriteString("By category:\n")
	for _, c := range domain.AllCategories() {
		if n := st.ByCategory[c]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d (%.1f%%)\n", c, n, st.Share(n))
		}
	}
	b.WriteString("By urgency:\n")
	for _, u := range domain.AllUrgencies() {
		if n := st.ByUrgency[u]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", u, n)
		}
	}
	b.WriteString("By status:\n")
	for _, status := range domain.AllStatuses() {
		if n := st.ByStatus[status]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", status, n)
		}
	}
	fmt.Fprintf(&b, "Flagged as possible spam: %d\n", st.FlaggedSpam)
	fmt.Fprintf(&b, "Trend: %s\n", s.Direction)
	return b.String()
}

// LocalNarrative writes a deterministic narrative from the aggregates.
func LocalNarrative(s *domain.Summary) string {
	st := &s.Stats
	if st.Total == 0 {
		return "No complaints were received in the selected period."
	}

	var b strings.Builder
	noun := "complaints were"
	if st.Total == 1 {
		noun = "complaint was"
	}
	fmt.Fprintf(&b, "%d %s received between %s and %s.",
		st.Total, noun, st.First.Format(time.DateOnly), st.Last.Format(time.DateOnly))

	top := st.TopCategory()
	fmt.Fprintf(&b, " The most frequent category was %s (%.0f%%).", top, st.Share(st.ByCategory[top]))

	if n := st.ByUrgency[domain.UrgencyCritical]; n > 0 {
		fmt.Fprintf(&b, " %d critical case(s) need immediate attention.", n)
	} else if n := st.ByUrgency[domain.UrgencyHigh]; n > 0 {
		fmt.Fprintf(&b, " %d high-urgency case(s) are on record; none are critical.", n)
	}

	switch s.Direction {
	case domain.TrendRising:
		b.WriteString(" Volume is rising over the period.")
	case domain.TrendFalling:
		b.WriteString(" Volume is falling over the period.")
	default:
		b.WriteString(" Volume is stable over the period.")
	}

	if n := st.ByStatus[domain.StatusPending]; n > 0 {
		fmt.Fprintf(&b, " %d remain pending review.", n)
	}
	if st.FlaggedSpam > 0 {
		fmt.Fprintf(&b, " %d submission(s) were flagged as possible spam.", st.FlaggedSpam)
	}
	return b.String()
}

// Narrator writes the executive narrative, preferring the language model
// and falling back to LocalNarrative on any failure.
type Narrator struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
	cfg         RemoteConfig
}

// NewNarrator creates a narrator. llm may be nil.
func NewNarrator(llm driven.LLMService, cfg RemoteConfig) *Narrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultAnalyzerTimeout
	}
	return &Narrator{llm: llm, cfg: cfg}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (n *Narrator) SetPromptStore(store driven.PromptStore) {
	n.promptStore = store
}

// Narrate fills in the narrative of s.
func (n *Narrator) Narrate(ctx context.Context, s *domain.Summary) {
	s.Narrative, s.NarrativeSource = LocalNarrative(s), domain.NarrativeLocal
	if n == nil || n.llm == nil || s.Stats.Total == 0 {
		return
	}

	template := driven.DefaultNarratePrompt
	if n.promptStore != nil {
		if p, err := n.promptStore.Load(driven.PromptNarrate); err == nil {
			template = p
		} else {
			logger.Warn("Using built-in narrate prompt: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	req := driven.UserPrompt("", strings.Replace(template, driven.PlaceholderFigures, FormatFigures(s), 1))
	req.MaxTokens, req.Temperature = narrateMaxTokens, n.cfg.Temperature
	text, err := n.llm.Complete(ctx, req)
	if err != nil {
		logger.Warn("Remote narrative failed, using local narrative: %v", err)
		return
	}
	if text = strings.TrimSpace(text); text == "" {
		logger.Warn("Remote narrative was empty, using local narrative")
		return
	}
	s.Narrative, s.NarrativeSource = text, domain.NarrativeRemote
}
