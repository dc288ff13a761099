package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

func writeRules(t *testing.T, path string, rules *domain.Rules) {
	t.Helper()
	data, err := toml.Marshal(rules)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func TestNewRuleStore_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewRuleStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".whistle", "rules.toml"), store.Path())
}

func TestRuleStore_LoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "rules.toml")
	store, err := NewRuleStore(path)
	require.NoError(t, err)

	rules, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRules(), *rules)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# whistle heuristic analyzer rules.")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestRuleStore_DefaultsRoundTrip(t *testing.T) {
	store, err := NewRuleStore(filepath.Join(t.TempDir(), "rules.toml"))
	require.NoError(t, err)
	_, err = store.Load()
	require.NoError(t, err)

	reloaded, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRules(), *reloaded)
}

func TestRuleStore_LoadEdited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	rules := domain.DefaultRules()
	rules.Urgency.Critical = 6
	writeRules(t, path, &rules)
	store, err := NewRuleStore(path)
	require.NoError(t, err)

	got, err := store.Load()

	require.NoError(t, err)
	assert.InDelta(t, 6.0, got.Urgency.Critical, 1e-9)
}

func TestRuleStore_LoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed toml", "categories = [[["},
		{"no categories", "sentiment_scale = 3\nconfidence_saturation = 4\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))
			store, err := NewRuleStore(path)
			require.NoError(t, err)

			_, err = store.Load()

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRuleStore_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	store, err := NewRuleStore(path)
	require.NoError(t, err)
	_, err = store.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *domain.Rules, 4)
	failures := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func(r *domain.Rules) { changes <- r }, func(err error) { failures <- err })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("categories = [[["), 0600))
	select {
	case err := <-failures:
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	case <-time.After(3 * time.Second):
		t.Fatal("invalid rules were not reported")
	}

	rules := domain.DefaultRules()
	rules.SentimentScale = 5
	writeRules(t, path, &rules)
	select {
	case got := <-changes:
		assert.InDelta(t, 5.0, got.SentimentScale, 1e-9)
	case <-time.After(3 * time.Second):
		t.Fatal("rules change was not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestRuleStore_WatchMissingDirectory(t *testing.T) {
	store, err := NewRuleStore(filepath.Join(t.TempDir(), "missing", "rules.toml"))
	require.NoError(t, err)

	err = store.Watch(context.Background(), nil, nil)

	assert.Error(t, err)
}
