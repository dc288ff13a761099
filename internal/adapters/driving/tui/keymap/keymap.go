// Package keymap defines keybindings for the TUI.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the dashboard reacts to.
type KeyMap struct {
	Quit, Help, Back key.Binding

	// List navigation.
	Up, Down, Select, Refresh key.Binding

	// Filters on the complaint list. ToggleSpam reveals flagged complaints.
	CycleStatus, CycleCategory, CycleUrgency, ToggleSpam, Search key.Binding

	// Review status changes in the detail view.
	MarkPending, MarkReview, MarkResolved key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: bind("q", "quit", "q", "ctrl+c"),
		Help: bind("?", "help", "?"),
		Back: bind("esc", "back", "esc"),

		Up:      bind("↑/k", "up", "up", "k"),
		Down:    bind("↓/j", "down", "down", "j"),
		Select:  bind("enter", "open", "enter"),
		Refresh: bind("r", "refresh", "r"),

		CycleStatus:   bind("s", "status filter", "s"),
		CycleCategory: bind("c", "category filter", "c"),
		CycleUrgency:  bind("u", "urgency filter", "u"),
		ToggleSpam:    bind("x", "show spam", "x"),
		Search:        bind("/", "search", "/"),

		MarkPending:  bind("1", "pending", "1"),
		MarkReview:   bind("2", "in review", "2"),
		MarkResolved: bind("3", "resolved", "3"),
	}
}

// ShortHelp is shown when no view supplies its own hints.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ListHelp returns the hints for the complaint list.
func (k *KeyMap) ListHelp() []key.Binding {
	return []key.Binding{k.Select, k.CycleStatus, k.CycleCategory, k.Search, k.Help}
}

// DetailHelp returns the hints for the detail view.
func (k *KeyMap) DetailHelp() []key.Binding {
	return []key.Binding{k.MarkPending, k.MarkReview, k.MarkResolved, k.Back}
}

// FullHelp groups every binding by column for the help overlay.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.CycleStatus, k.CycleCategory, k.CycleUrgency, k.ToggleSpam, k.Search, k.Refresh},
		{k.MarkPending, k.MarkReview, k.MarkResolved},
		{k.Help, k.Quit},
	}
}

// Matches reports whether keyStr triggers binding.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
