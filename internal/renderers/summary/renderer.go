// Package summary renders the executive summary as markdown.
package summary

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/renderers/labels"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// barWidth is the number of characters in a full trend bar.
const barWidth = 30

const markdown = `# Executive Summary: Anonymous Complaints

_Generated {{time .GeneratedAt}} · Filter: {{.Filter}}_

## Overview

{{.Summary.Narrative}}
{{- if eq .Summary.NarrativeSource "local"}}

_Narrative generated locally from the figures below._
{{- end}}

## Key figures

| Metric | Value |
|---|---|
| Total complaints | {{.Stats.Total}} |
| Period | {{date .Stats.First}} to {{date .Stats.Last}} |
| Average per month | {{printf "%.1f" .Stats.PerMonth}} |
| Pending review | {{.Pending}} |
| Flagged as possible spam | {{.Stats.FlaggedSpam}} |
| Average confidence | {{printf "%.2f" .Stats.AvgConfidence}} |
| Trend | {{.Summary.Direction}} |

## By category

| Category | Count | Share |
|---|---|---|
{{range .Categories}}| {{.Label}} | {{.Count}} | {{.Percent}} |
{{end}}
## By urgency

| Urgency | Count | Share |
|---|---|---|
{{range .Urgencies}}| {{.Label}} | {{.Count}} | {{.Percent}} |
{{end}}
## Daily trend

` + "```" + `
{{range .Trend}}{{.}}
{{end}}` + "```" + `

## Critical cases

{{if .Summary.Critical}}{{range .Summary.Critical}}- ` + "`{{.}}`" + `
{{end}}{{else}}None.
{{end}}`

var summaryTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"time": labels.Time,
	"date": func(t time.Time) string { return t.UTC().Format(time.DateOnly) },
}).Parse(markdown))

type countRow struct {
	Label   string
	Count   int
	Percent string
}

type summaryData struct {
	GeneratedAt time.Time
	Filter      string
	Summary     *domain.Summary
	Stats       *domain.Stats
	Pending     int
	Categories  []countRow
	Urgencies   []countRow
	Trend       []string
}

// Renderer writes the markdown executive summary.
type Renderer struct{}

// New creates a new summary renderer.
func New() *Renderer {
	return &Renderer{}
}

// Format returns the export format this renderer produces.
func (r *Renderer) Format() domain.ExportFormat {
	return domain.FormatSummary
}

// ContentType returns the MIME type of the output.
func (r *Renderer) ContentType() string {
	return "text/markdown; charset=utf-8"
}

// Render produces the summary. opts.Summary must be set.
func (r *Renderer) Render(_ []domain.Complaint, opts driven.RenderOptions) ([]byte, error) {
	s := opts.Summary
	if s == nil {
		return nil, fmt.Errorf("%w: summary export needs precomputed aggregates", domain.ErrInvalidInput)
	}
	if s.Stats.Total == 0 {
		return nil, domain.ErrNoData
	}

	data := summaryData{
		GeneratedAt: opts.GeneratedAt,
		Filter:      labels.Filter(opts),
		Summary:     s,
		Stats:       &s.Stats,
		Pending:     s.Stats.ByStatus[domain.StatusPending],
		Trend:       trendLines(s.Trend),
	}
	for _, c := range domain.AllCategories() {
		if n := s.Stats.ByCategory[c]; n > 0 {
			data.Categories = append(data.Categories, countRow{c.String(), n, labels.Percent(&s.Stats, n)})
		}
	}
	for _, u := range domain.AllUrgencies() {
		if n := s.Stats.ByUrgency[u]; n > 0 {
			data.Urgencies = append(data.Urgencies, countRow{u.String(), n, labels.Percent(&s.Stats, n)})
		}
	}

	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute summary template: %w", err)
	}
	return buf.Bytes(), nil
}

// trendLines draws one text bar per day, scaled to the busiest day.
func trendLines(points []domain.TrendPoint) []string {
	peak := 0
	for _, p := range points {
		peak = max(peak, p.Count)
	}
	lines := make([]string, 0, len(points))
	for _, p := range points {
		width := 0
		if peak > 0 {
			width = p.Count * barWidth / peak
		}
		lines = append(lines, fmt.Sprintf("%s %3d %s", p.Day.Format(time.DateOnly), p.Count, strings.Repeat("#", width)))
	}
	return lines
}
