package status

import (
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/whistle-cli/internal/adapters/driving/tui/styles"
)

func TestBar_ListStates(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(b *Bar)
		want    string
		notWant string
	}{
		{"fresh", func(*Bar) {}, "Ready", ""},
		{"loading", func(b *Bar) { b.Loading() }, "Loading...", ""},
		{"none", func(b *Bar) { b.Loaded(0) }, "No complaints match", ""},
		{"one", func(b *Bar) { b.Loaded(1) }, "1 complaint", "1 complaints"},
		{"many", func(b *Bar) { b.Loaded(42) }, "42 complaints", ""},
		{"failed", func(b *Bar) { b.Failed(errors.New("store unavailable")) }, "Error: store unavailable", ""},
		{"nil error", func(b *Bar) { b.Failed(nil) }, "Error: unknown error", ""},
		{"reload clears error", func(b *Bar) { b.Failed(errors.New("boom")); b.Loading() }, "Loading...", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBar(nil, nil, ModeList)
			b.SetWidth(200)
			tt.setup(b)

			view := b.View()

			assert.Contains(t, view, tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, view, tt.notWant)
			}
		})
	}
}

func TestBar_Operator(t *testing.T) {
	b := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap(), ModeList)
	b.SetWidth(200)
	b.SetOperator("hr-admin")
	b.Loaded(3)

	assert.Contains(t, b.View(), "[hr-admin]")

	b.Failed(errors.New("session expired"))
	assert.NotContains(t, b.View(), "[hr-admin]")
}

func TestBar_HintsFollowMode(t *testing.T) {
	km := keymap.DefaultKeyMap()
	hint := func(bindings []key.Binding) string { return bindings[0].Help().Desc }

	list := NewBar(nil, km, ModeList)
	list.SetWidth(300)
	list.Loaded(2)
	assert.Contains(t, list.View(), hint(km.ListHelp()))

	detail := NewBar(nil, km, ModeDetail)
	detail.SetWidth(300)
	detail.SetLabel("a1b2c3d4e5f60718")
	view := detail.View()
	assert.Contains(t, view, "a1b2c3d4e5f60718")
	assert.Contains(t, view, hint(km.DetailHelp()))
}

func TestBar_Width(t *testing.T) {
	b := NewBar(nil, nil, ModeList)
	b.SetWidth(120)

	assert.Equal(t, 120, lipgloss.Width(b.View()))
}
