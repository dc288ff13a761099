// Package status renders the one-line bar at the bottom of each view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/styles"
)

// Mode selects the key hints shown on the right.
type Mode int

// Bar modes.
const (
	ModeList Mode = iota
	ModeDetail
)

// Bar shows load progress, the listed count or an error on the left and
// key hints on the right.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	mode   Mode

	loading  bool
	loaded   bool
	count    int
	err      string
	label    string
	operator string
	width    int
}

// NewBar creates a bar. Nil styles or keymap fall back to the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap, mode Mode) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, mode: mode, width: 80}
}

// Loading marks a fetch in flight.
func (b *Bar) Loading() {
	b.loading, b.err = true, ""
}

// Loaded records a finished fetch of n complaints.
func (b *Bar) Loaded(n int) {
	b.loading, b.loaded, b.count, b.err = false, true, n, ""
}

// Failed shows err until the next Loading or Loaded.
func (b *Bar) Failed(err error) {
	b.loading = false
	b.err = "unknown error"
	if err != nil {
		b.err = err.Error()
	}
}

// SetLabel sets the text shown in detail mode, usually a complaint id.
func (b *Bar) SetLabel(label string) {
	b.label = label
}

// SetOperator sets the session owner shown after the status.
func (b *Bar) SetOperator(name string) {
	b.operator = name
}

// SetWidth sets the rendered width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// View renders the bar.
func (b *Bar) View() string {
	left, right := b.left(), b.hints()
	gap := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) left() string {
	var out string
	switch {
	case b.err != "":
		return b.styles.Error.Render("Error: " + b.err)
	case b.loading:
		out = b.styles.Muted.Render("Loading...")
	case b.mode == ModeDetail:
		out = b.styles.Normal.Render(b.label)
	case !b.loaded:
		out = b.styles.Muted.Render("Ready")
	case b.count == 0:
		out = b.styles.Muted.Render("No complaints match")
	case b.count == 1:
		out = b.styles.Normal.Render("1 complaint")
	default:
		out = b.styles.Normal.Render(fmt.Sprintf("%d complaints", b.count))
	}
	if b.operator != "" {
		out += b.styles.Muted.Render("  [" + b.operator + "]")
	}
	return out
}

func (b *Bar) hints() string {
	var bindings []key.Binding
	switch {
	case b.mode == ModeDetail:
		bindings = b.keymap.DetailHelp()
	case b.loaded && b.count > 0:
		bindings = b.keymap.ListHelp()
	default:
		bindings = b.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}
