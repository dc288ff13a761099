// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// ComplaintList displays complaints in a navigable list.
type ComplaintList struct {
	complaints    []domain.Complaint
	selected      int
	styles        *styles.Styles
	width         int
	height        int
	minConfidence float64
	spamThreshold float64
}

// NewComplaintList creates a new complaint list component.
func NewComplaintList(s *styles.Styles) *ComplaintList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	defaults := domain.DefaultAppSettings().Analyzer

	return &ComplaintList{
		styles:        s,
		width:         80,
		height:        10,
		minConfidence: defaults.MinConfidence,
		spamThreshold: defaults.SpamThreshold,
	}
}

// Init initialises the complaint list.
func (l *ComplaintList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *ComplaintList) Update(msg tea.Msg) (*ComplaintList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home", "g":
			l.selected = 0
		case "end", "G":
			if len(l.complaints) > 0 {
				l.selected = len(l.complaints) - 1
			}
		}
	}
	return l, nil
}

// View renders the complaint list.
func (l *ComplaintList) View() string {
	if len(l.complaints) == 0 {
		return l.styles.Muted.Render("No complaints found")
	}

	lines := make([]string, 0, len(l.complaints)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Complaints (%d)", len(l.complaints))), "")

	// Each complaint takes two lines.
	visible := (l.height - 2) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.complaints))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderComplaint(i, &l.complaints[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *ComplaintList) renderComplaint(index int, c *domain.Complaint) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	category := c.Category.String()
	if c.IsSuggested(l.minConfidence) {
		category += "?"
	}
	head := fmt.Sprintf("%s%s  %-10s %-22s", indicator, c.CreatedAt.UTC().Format("2006-01-02"), c.Status, category)

	var line string
	if index == l.selected {
		line = l.styles.Selected.Render(head + " " + c.Urgency.String())
	} else {
		line = l.styles.Normal.Render(head+" ") + l.styles.Urgency(c.Urgency).Render(c.Urgency.String())
	}
	previewStyle := l.styles.Muted
	if c.IsFlaggedSpam(l.spamThreshold) {
		line += l.styles.Warning.Render("  spam")
		previewStyle = l.styles.Spam
	}

	maxPreview := max(l.width-6, 20)
	preview := strings.Join(strings.Fields(c.Text), " ")
	if r := []rune(preview); len(r) > maxPreview {
		preview = string(r[:maxPreview-3]) + "..."
	}
	return line + "\n" + previewStyle.Render("    "+preview)
}

// SetComplaints replaces the listed complaints and resets the selection.
func (l *ComplaintList) SetComplaints(complaints []domain.Complaint) {
	l.complaints = complaints
	l.selected = 0
}

// Replace swaps in an updated copy of a listed complaint, keeping the selection.
func (l *ComplaintList) Replace(c domain.Complaint) bool {
	for i := range l.complaints {
		if l.complaints[i].ID == c.ID {
			l.complaints[i] = c
			return true
		}
	}
	return false
}

// Complaints returns the listed complaints.
func (l *ComplaintList) Complaints() []domain.Complaint {
	return l.complaints
}

// SetThresholds sets the confidence floor and spam threshold used for markers.
func (l *ComplaintList) SetThresholds(minConfidence, spamThreshold float64) {
	l.minConfidence = minConfidence
	l.spamThreshold = spamThreshold
}

// Selected returns the index of the selected complaint.
func (l *ComplaintList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *ComplaintList) SetSelected(index int) {
	if index >= 0 && index < len(l.complaints) {
		l.selected = index
	}
}

// SelectedComplaint returns the selected complaint, or nil if none.
func (l *ComplaintList) SelectedComplaint() *domain.Complaint {
	if l.selected < 0 || l.selected >= len(l.complaints) {
		return nil
	}
	return &l.complaints[l.selected]
}

// MoveUp moves selection up.
func (l *ComplaintList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *ComplaintList) MoveDown() {
	if l.selected < len(l.complaints)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *ComplaintList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of complaints.
func (l *ComplaintList) Count() int {
	return len(l.complaints)
}

// IsEmpty returns whether the list is empty.
func (l *ComplaintList) IsEmpty() bool {
	return len(l.complaints) == 0
}
