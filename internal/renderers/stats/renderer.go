// Package stats renders aggregate complaint statistics as plain text.
package stats

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/renderers/labels"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

const rule = "----------------------------------------"

// Renderer writes the statistics report.
type Renderer struct{}

// New creates a new statistics renderer.
func New() *Renderer {
	return &Renderer{}
}

// Format returns the export format this renderer produces.
func (r *Renderer) Format() domain.ExportFormat {
	return domain.FormatStats
}

// ContentType returns the MIME type of the output.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render produces the statistics report. opts.Summary must be set.
func (r *Renderer) Render(_ []domain.Complaint, opts driven.RenderOptions) ([]byte, error) {
	if opts.Summary == nil {
		return nil, fmt.Errorf("%w: statistics export needs precomputed aggregates", domain.ErrInvalidInput)
	}
	s := &opts.Summary.Stats
	if s.Total == 0 {
		return nil, domain.ErrNoData
	}

	var buf bytes.Buffer
	buf.WriteString("=== COMPLAINT STATISTICS ===\n")
	fmt.Fprintf(&buf, "Generated: %s\n", labels.Time(opts.GeneratedAt))
	fmt.Fprintf(&buf, "Filter:    %s\n", labels.Filter(opts))
	fmt.Fprintf(&buf, "Total:     %d\n", s.Total)
	fmt.Fprintf(&buf, "Period:    %s to %s (%.1f per month)\n",
		s.First.UTC().Format(time.DateOnly), s.Last.UTC().Format(time.DateOnly), s.PerMonth)

	section(&buf, "By category", byCount(s.ByCategory, domain.AllCategories()))
	section(&buf, "By urgency", inOrder(s.ByUrgency, domain.AllUrgencies()))
	section(&buf, "By status", inOrder(s.ByStatus, domain.AllStatuses()))

	buf.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&buf, "Flagged as possible spam: %d (%s)\n", s.FlaggedSpam, labels.Percent(s, s.FlaggedSpam))
	fmt.Fprintf(&buf, "Average confidence:       %.2f\n", s.AvgConfidence)
	fmt.Fprintf(&buf, "Average spam score:       %.2f\n", s.AvgSpamScore)
	return buf.Bytes(), nil
}

type line struct {
	label string
	count int
}

// byCount orders non-empty categories by count, ties in priority order.
func byCount(counts map[domain.Category]int, order []domain.Category) []line {
	lines := inOrder(counts, order)
	slices.SortStableFunc(lines, func(a, b line) int {
		return cmp.Compare(b.count, a.count)
	})
	return lines
}

func inOrder[K ~string](counts map[K]int, order []K) []line {
	var lines []line
	for _, k := range order {
		if n := counts[k]; n > 0 {
			lines = append(lines, line{label: string(k), count: n})
		}
	}
	return lines
}

func section(buf *bytes.Buffer, title string, lines []line) {
	total := 0
	for _, l := range lines {
		total += l.count
	}

	fmt.Fprintf(buf, "\n%s:\n%s\n", title, rule)
	w := tabwriter.NewWriter(buf, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, l := range lines {
		share := float64(l.count) * 100 / float64(max(total, 1))
		fmt.Fprintf(w, "%s\t%d\t%5.1f%%\t\n", l.label, l.count, share)
	}
	_ = w.Flush()
	if len(lines) == 0 {
		buf.WriteString("  none\n")
	}
}
