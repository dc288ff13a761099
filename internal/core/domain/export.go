package domain

import (
	"fmt"
	"strings"
	"time"
)

// ExportFormat names an output representation of a complaint set.
type ExportFormat string

// Supported export formats.
const (
	// FormatText is a human-readable block per record.
	FormatText ExportFormat = "text"

	// FormatCSV is a header row plus one row per record.
	FormatCSV ExportFormat = "csv"

	// FormatJSON is the structured backup; it round-trips losslessly.
	FormatJSON ExportFormat = "json"

	// FormatHTML is a visual narrative report.
	FormatHTML ExportFormat = "html"

	// FormatSummary is the executive summary with aggregates and narrative.
	FormatSummary ExportFormat = "summary"

	// FormatStats is the plain statistics sheet.
	FormatStats ExportFormat = "stats"

	// FormatPDF is a printable report.
	FormatPDF ExportFormat = "pdf"
)

// AllExportFormats returns every supported format.
func AllExportFormats() []ExportFormat {
	return []ExportFormat{FormatText, FormatCSV, FormatJSON, FormatHTML, FormatSummary, FormatStats, FormatPDF}
}

// IsValid returns true if the format is recognised.
func (f ExportFormat) IsValid() bool {
	for _, known := range AllExportFormats() {
		if f == known {
			return true
		}
	}
	return false
}

// RequiresData reports whether rendering an empty set is an error.
func (f ExportFormat) RequiresData() bool {
	return f == FormatSummary || f == FormatStats
}

// Scope adjusts spec to the records the format reports on. Statistics
// count flagged spam themselves, so they always see it.
func (f ExportFormat) Scope(spec FilterSpec) FilterSpec {
	if f == FormatStats {
		spec.IncludeFlaggedSpam = true
	}
	return spec
}

// Extension returns the file extension used for the format.
func (f ExportFormat) Extension() string {
	switch f {
	case FormatText, FormatStats:
		return "txt"
	case FormatSummary:
		return "md"
	default:
		return string(f)
	}
}

// String returns the string representation.
func (f ExportFormat) String() string {
	return string(f)
}

// ParseExportFormat parses a format name. "txt", "markdown" and "backup" are accepted aliases.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "json", "backup":
		return FormatJSON, nil
	case "html", "report":
		return FormatHTML, nil
	case "summary", "markdown", "md", "executive":
		return FormatSummary, nil
	case "stats", "statistics":
		return FormatStats, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", ErrInvalidInput, s)
	}
}

// Artifact is the rendered output of an export.
type Artifact struct {
	Format      ExportFormat
	Data        []byte
	Filename    string
	ContentType string
	RecordCount int
	GeneratedAt time.Time
}

// TrendDirection summarises how volume moved over the covered period.
type TrendDirection string

// Trend directions.
const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

// TrendPoint is the complaint count for one day.
type TrendPoint struct {
	Day   time.Time
	Count int
}

// NarrativeSource identifies who wrote the summary narrative.
type NarrativeSource string

// Narrative sources.
const (
	NarrativeRemote NarrativeSource = "remote"
	NarrativeLocal  NarrativeSource = "local"
)

// Stats holds aggregate figures over a complaint set.
type Stats struct {
	Total         int
	ByCategory    map[Category]int
	ByUrgency     map[Urgency]int
	ByStatus      map[Status]int
	FlaggedSpam   int
	AvgConfidence float64
	AvgSpamScore  float64
	First         time.Time
	Last          time.Time

	// PerMonth is the average number of complaints per calendar month covered.
	PerMonth float64
}

// Share returns n as a percentage of the total.
func (s *Stats) Share(n int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(s.Total)
}

// TopCategory returns the most frequent category, ties broken by priority.
func (s *Stats) TopCategory() Category {
	best, bestN := CategoryOther, -1
	for _, c := range AllCategories() {
		if n := s.ByCategory[c]; n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

// Summary is the executive overview of a complaint set.
type Summary struct {
	Stats     Stats
	Trend     []TrendPoint
	Direction TrendDirection

	// Critical lists the ids of records at Critical urgency.
	Critical []string

	Narrative       string
	NarrativeSource NarrativeSource
	GeneratedAt     time.Time
}
