package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"back", km.Back, []string{"esc"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"select", km.Select, []string{"enter"}},
		{"refresh", km.Refresh, []string{"r"}},
		{"status filter", km.CycleStatus, []string{"s"}},
		{"category filter", km.CycleCategory, []string{"c"}},
		{"urgency filter", km.CycleUrgency, []string{"u"}},
		{"spam", km.ToggleSpam, []string{"x"}},
		{"search", km.Search, []string{"/"}},
		{"pending", km.MarkPending, []string{"1"}},
		{"review", km.MarkReview, []string{"2"}},
		{"resolved", km.MarkResolved, []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_NoConflictsInList(t *testing.T) {
	km := DefaultKeyMap()
	seen := map[string]string{}

	for _, b := range []key.Binding{
		km.Quit, km.Help, km.Up, km.Down, km.Select, km.Refresh,
		km.CycleStatus, km.CycleCategory, km.CycleUrgency, km.ToggleSpam, km.Search,
	} {
		for _, k := range b.Keys() {
			assert.Empty(t, seen[k], "key %q bound twice", k)
			seen[k] = b.Help().Desc
		}
	}
}

func TestKeyMap_HelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 2)
	assert.Len(t, km.ListHelp(), 5)
	assert.Len(t, km.DetailHelp(), 4)
	assert.Len(t, km.FullHelp(), 4)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("q", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("2", km.MarkReview))
	assert.False(t, Matches("x", km.Quit))
	assert.False(t, Matches("", km.Quit))
}
