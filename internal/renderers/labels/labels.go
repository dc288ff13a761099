// Package labels holds the display helpers shared by the renderers.
package labels

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// SuggestedSuffix marks classifications below the confidence floor.
const SuggestedSuffix = " (suggested)"

// TimeLayout is the human-readable timestamp used in reports.
const TimeLayout = "2006-01-02 15:04 MST"

// Category returns the category name, marked when it is only a suggestion.
func Category(c *domain.Complaint, opts driven.RenderOptions) string {
	if c.IsSuggested(opts.MinConfidence) {
		return c.Category.String() + SuggestedSuffix
	}
	return c.Category.String()
}

// Urgency returns the urgency level, marked when it is only a suggestion.
func Urgency(c *domain.Complaint, opts driven.RenderOptions) string {
	if c.IsSuggested(opts.MinConfidence) {
		return c.Urgency.String() + SuggestedSuffix
	}
	return c.Urgency.String()
}

// Flagged reports whether the complaint is above the spam threshold.
// A zero threshold in opts disables flagging.
func Flagged(c *domain.Complaint, opts driven.RenderOptions) bool {
	return opts.SpamThreshold > 0 && c.IsFlaggedSpam(opts.SpamThreshold)
}

// Sentiment formats the sentiment label and magnitude.
func Sentiment(s domain.Sentiment) string {
	return fmt.Sprintf("%s (%.2f)", s.Label, s.Magnitude)
}

// Time formats t in UTC for reports.
func Time(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(TimeLayout)
}

// Filter returns the filter description, or "all" when none was given.
func Filter(opts driven.RenderOptions) string {
	if opts.Filter == "" {
		return "all"
	}
	return opts.Filter
}

// Percent formats a share as a whole percentage.
func Percent(s *domain.Stats, n int) string {
	return fmt.Sprintf("%.0f%%", s.Share(n))
}

// Wrap breaks text into lines of at most width runes, splitting on spaces.
// Words longer than width are kept whole.
func Wrap(text string, width int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len([]rune(line))+1+len([]rune(w)) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		lines = append(lines, line)
	}
	return lines
}
