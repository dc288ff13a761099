// Package styles holds the operator console palette and lipgloss styles.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// Theme is the console palette. Urgency, status and sentiment colours are
// looked up by value; a missing entry renders in Text.
type Theme struct {
	Accent lipgloss.Color
	Text   lipgloss.Color
	Faint  lipgloss.Color
	Border lipgloss.Color
	Bar    lipgloss.Color

	Good    lipgloss.Color
	Caution lipgloss.Color
	Bad     lipgloss.Color

	Urgency   map[domain.Urgency]lipgloss.Color
	Status    map[domain.Status]lipgloss.Color
	Sentiment map[domain.SentimentLabel]lipgloss.Color
}

// DefaultTheme is a dark palette.
func DefaultTheme() *Theme {
	t := &Theme{
		Accent:  "#7C3AED",
		Text:    "#CDD6F4",
		Faint:   "#6C7086",
		Border:  "#45475A",
		Bar:     "#181825",
		Good:    "#A6E3A1",
		Caution: "#F9E2AF",
		Bad:     "#F38BA8",
	}
	t.Urgency = map[domain.Urgency]lipgloss.Color{
		domain.UrgencyLow:      t.Faint,
		domain.UrgencyMedium:   t.Caution,
		domain.UrgencyHigh:     t.Bad,
		domain.UrgencyCritical: "#EB6F92",
	}
	t.Status = map[domain.Status]lipgloss.Color{
		domain.StatusPending:  t.Caution,
		domain.StatusInReview: "#06B6D4",
		domain.StatusResolved: t.Good,
	}
	t.Sentiment = map[domain.SentimentLabel]lipgloss.Color{
		domain.SentimentNegative: t.Bad,
		domain.SentimentNeutral:  t.Text,
		domain.SentimentPositive: t.Good,
	}
	return t
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Label    lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	// Spam marks complaints over the spam threshold.
	Spam lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	FilterBar  lipgloss.Style
}

// NewStyles derives styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		theme:    theme,
		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Status[domain.StatusInReview]).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Faint),
		Selected: fg(theme.Text).Background(theme.Accent).Bold(true),
		Label:    fg(theme.Faint).Width(12),
		Error:    fg(theme.Bad),
		Success:  fg(theme.Good),
		Warning:  fg(theme.Caution),
		Spam:     fg(theme.Faint).Strikethrough(true),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: fg(theme.Faint).Background(theme.Bar).Padding(0, 1),
		FilterBar: fg(theme.Accent).Italic(true),
	}
}

// DefaultStyles returns NewStyles(DefaultTheme()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Urgency styles an urgency level. Critical is also bold.
func (s *Styles) Urgency(u domain.Urgency) lipgloss.Style {
	st := s.lookup(s.theme.Urgency[u])
	if u == domain.UrgencyCritical {
		st = st.Bold(true)
	}
	return st
}

// Status styles a review status.
func (s *Styles) Status(st domain.Status) lipgloss.Style {
	return s.lookup(s.theme.Status[st])
}

// Sentiment styles a sentiment label.
func (s *Styles) Sentiment(l domain.SentimentLabel) lipgloss.Style {
	return s.lookup(s.theme.Sentiment[l])
}

func (s *Styles) lookup(c lipgloss.Color) lipgloss.Style {
	if c == "" {
		return s.Normal
	}
	return lipgloss.NewStyle().Foreground(c)
}
