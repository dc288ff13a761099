// Package detail provides the single complaint view for the TUI.
package detail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driving"
)

// ErrNoComplaint is returned when a status change is requested with nothing shown.
var ErrNoComplaint = errors.New("no complaint selected")

// View shows one complaint with its status history and lets the operator
// move it through the review workflow.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	query  driving.QueryService
	ctx    context.Context

	bar  *status.Bar
	note *input.PromptInput

	complaint *domain.Complaint
	history   []domain.StatusChange

	// target is the status awaiting a note; nil when no prompt is open.
	target *domain.Status

	minConfidence float64
	spamThreshold float64
	err           error
	width         int
	height        int
}

// NewView creates a new detail view.
func NewView(s *styles.Styles, km *keymap.KeyMap, query driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	note := input.NewPromptInput(s, "Note", "optional, enter to apply")
	note.Blur()
	bar := status.NewBar(s, km, status.ModeDetail)
	defaults := domain.DefaultAppSettings().Analyzer

	return &View{
		styles:        s,
		keymap:        km,
		query:         query,
		ctx:           context.Background(),
		bar:           bar,
		note:          note,
		minConfidence: defaults.MinConfidence,
		spamThreshold: defaults.SpamThreshold,
		width:         80,
		height:        24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetThresholds sets the analyzer thresholds used for markers.
func (v *View) SetThresholds(minConfidence, spamThreshold float64) {
	v.minConfidence = minConfidence
	v.spamThreshold = spamThreshold
}

// SetComplaint shows c and loads its latest state and history.
func (v *View) SetComplaint(c domain.Complaint) tea.Cmd {
	v.complaint = &c
	v.history = nil
	v.target = nil
	v.err = nil
	v.bar.SetLabel(c.ID)
	return v.load(c.ID)
}

func (v *View) load(id string) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		c, err := v.query.Get(ctx, id)
		if err != nil {
			return messages.DetailLoaded{Err: err}
		}
		history, err := v.query.History(ctx, id)
		return messages.DetailLoaded{Complaint: c, History: history, Err: err}
	}
}

func (v *View) updateStatus(to domain.Status, note string) tea.Cmd {
	if v.complaint == nil {
		return func() tea.Msg { return messages.StatusUpdated{Err: ErrNoComplaint} }
	}
	id := v.complaint.ID
	ctx := v.ctx
	return func() tea.Msg {
		c, err := v.query.UpdateStatus(ctx, id, to, note)
		return messages.StatusUpdated{Complaint: c, Err: err}
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.target != nil {
			return v.handleNoteKey(msg)
		}
		return v.handleKey(msg)

	case messages.DetailLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		if msg.Complaint != nil {
			v.complaint = msg.Complaint
		}
		v.history = msg.History
		return v, nil

	case messages.StatusUpdated:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		if msg.Complaint == nil {
			return v, nil
		}
		v.complaint = msg.Complaint
		return v, v.load(msg.Complaint.ID)

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewComplaints} }
	case keymap.Matches(k, v.keymap.Refresh):
		if v.complaint != nil {
			return v, v.load(v.complaint.ID)
		}
	case keymap.Matches(k, v.keymap.MarkPending):
		return v, v.openNote(domain.StatusPending)
	case keymap.Matches(k, v.keymap.MarkReview):
		return v, v.openNote(domain.StatusInReview)
	case keymap.Matches(k, v.keymap.MarkResolved):
		return v, v.openNote(domain.StatusResolved)
	}
	return v, nil
}

func (v *View) openNote(to domain.Status) tea.Cmd {
	if v.complaint == nil {
		return nil
	}
	v.target = &to
	v.note.Reset()
	v.note.SetLabel("Note for " + to.String())
	return v.note.Focus()
}

func (v *View) handleNoteKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		to := *v.target
		v.target = nil
		v.note.Blur()
		return v, v.updateStatus(to, strings.TrimSpace(v.note.Value()))
	case tea.KeyEsc:
		v.target = nil
		v.note.Blur()
		return v, nil
	default:
		var cmd tea.Cmd
		v.note, cmd = v.note.Update(msg)
		return v, cmd
	}
}

// View renders the complaint and its history.
func (v *View) View() string {
	if v.complaint == nil {
		return v.styles.Muted.Render("No complaint selected") + "\n\n" + v.bar.View()
	}
	c := v.complaint
	s := v.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Complaint " + c.ID))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(s.Label.Render(label) + value + "\n")
	}
	field("Submitted", c.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	field("Status", s.Status(c.Status).Render(c.Status.String()))
	category := c.Category.String()
	if c.IsSuggested(v.minConfidence) {
		category += s.Muted.Render(" (suggested)")
	}
	field("Category", category)
	field("Urgency", s.Urgency(c.Urgency).Render(c.Urgency.String()))
	field("Sentiment", s.Sentiment(c.Sentiment.Label).Render(
		fmt.Sprintf("%s (%.2f)", c.Sentiment.Label, c.Sentiment.Magnitude)))
	spam := fmt.Sprintf("%.2f", c.SpamScore)
	if c.IsFlaggedSpam(v.spamThreshold) {
		spam += s.Warning.Render(" (flagged)")
	}
	field("Spam score", spam)
	field("Confidence", fmt.Sprintf("%.2f", c.Confidence))

	b.WriteString("\n")
	wrap := max(v.width-4, 20)
	b.WriteString(lipgloss.NewStyle().Width(wrap).Render(c.Text))
	b.WriteString("\n\n")

	b.WriteString(s.Subtitle.Render("History"))
	b.WriteString("\n")
	if len(v.history) == 0 {
		b.WriteString(s.Muted.Render("  no status changes"))
		b.WriteString("\n")
	}
	for _, h := range v.history {
		line := fmt.Sprintf("  %s  %s -> %s", h.ChangedAt.UTC().Format("2006-01-02 15:04"), h.From, h.To)
		if h.Note != "" {
			line += "  " + s.Muted.Render(h.Note)
		}
		b.WriteString(line + "\n")
	}

	if v.target != nil {
		b.WriteString("\n")
		b.WriteString(v.note.View())
		b.WriteString("\n")
	}
	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(s.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.bar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.bar.SetWidth(width)
	v.note.SetWidth(width)
}

// Complaint returns the complaint being shown.
func (v *View) Complaint() *domain.Complaint {
	return v.complaint
}

// History returns the loaded status history.
func (v *View) History() []domain.StatusChange {
	return v.history
}

// Prompting reports whether the note prompt is open.
func (v *View) Prompting() bool {
	return v.target != nil
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
