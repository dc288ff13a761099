// Package narrative renders complaints as a visual HTML report with
// aggregate counts per category and urgency.
package narrative

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/renderers/labels"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

// maxBarWidth is the pixel width of a 100% bar.
const maxBarWidth = 200

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

type countRow struct {
	Label   string
	Count   int
	Percent string
	Width   int
}

type recordRow struct {
	ID        string
	Created   string
	Category  string
	Urgency   string
	Status    string
	Text      string
	Suggested bool
	Flagged   bool
}

type reportData struct {
	GeneratedAt string
	Filter      string
	Total       int
	Narrative   string
	ByCategory  []countRow
	ByUrgency   []countRow
	Rows        []recordRow
}

// Renderer writes the HTML report.
type Renderer struct{}

// New creates a new narrative renderer.
func New() *Renderer {
	return &Renderer{}
}

// Format returns the export format this renderer produces.
func (r *Renderer) Format() domain.ExportFormat {
	return domain.FormatHTML
}

// ContentType returns the MIME type of the output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the HTML report. Counts are taken from the records so
// the report is complete without a precomputed summary.
func (r *Renderer) Render(records []domain.Complaint, opts driven.RenderOptions) ([]byte, error) {
	data := reportData{
		GeneratedAt: labels.Time(opts.GeneratedAt),
		Filter:      labels.Filter(opts),
		Total:       len(records),
	}
	if opts.Summary != nil {
		data.Narrative = opts.Summary.Narrative
	}

	byCategory := make(map[domain.Category]int)
	byUrgency := make(map[domain.Urgency]int)
	for i := range records {
		c := &records[i]
		byCategory[c.Category]++
		byUrgency[c.Urgency]++
		data.Rows = append(data.Rows, recordRow{
			ID:        c.ID,
			Created:   labels.Time(c.CreatedAt),
			Category:  c.Category.String(),
			Urgency:   c.Urgency.String(),
			Status:    c.Status.String(),
			Text:      c.Text,
			Suggested: c.IsSuggested(opts.MinConfidence),
			Flagged:   labels.Flagged(c, opts),
		})
	}

	for _, cat := range domain.AllCategories() {
		data.ByCategory = append(data.ByCategory, newCountRow(cat.String(), byCategory[cat], len(records)))
	}
	for _, u := range domain.AllUrgencies() {
		data.ByUrgency = append(data.ByUrgency, newCountRow(u.String(), byUrgency[u], len(records)))
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute report template: %w", err)
	}
	return buf.Bytes(), nil
}

func newCountRow(label string, n, total int) countRow {
	row := countRow{Label: label, Count: n, Percent: "0%"}
	if total > 0 {
		share := float64(n) / float64(total)
		row.Percent = fmt.Sprintf("%.0f%%", share*100)
		row.Width = int(share * maxBarWidth)
	}
	return row
}
