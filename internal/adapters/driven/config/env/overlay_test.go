package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/storage/memory"
)

func overlayWith(vars map[string]string, seed map[string]any) (*Overlay, *memory.ConfigStore) {
	base := memory.NewConfigStore(seed)
	return NewOverlayWithLookup(base, func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}), base
}

func TestKey(t *testing.T) {
	assert.Equal(t, "WHISTLE_ANALYZER_SPAM_THRESHOLD", Key("analyzer.spam_threshold"))
	assert.Equal(t, "WHISTLE_LLM_API_KEY", Key("llm.api_key"))
	assert.Equal(t, "WHISTLE_STORE_DATA_DIR", Key("store.data-dir"))
}

func TestOverlay_OverridesBase(t *testing.T) {
	o, _ := overlayWith(map[string]string{
		"WHISTLE_ANALYZER_SPAM_THRESHOLD":  "0.8",
		"WHISTLE_ANALYZER_MAX_TEXT_LENGTH": "900",
		"WHISTLE_ANALYZER_REMOTE_ENABLED":  "true",
		"WHISTLE_LLM_PROVIDER":             "ollama",
	}, map[string]any{
		"analyzer.spam_threshold":  0.6,
		"analyzer.max_text_length": 5000,
		"llm.provider":             "openai",
	})

	assert.InDelta(t, 0.8, o.GetFloat("analyzer.spam_threshold"), 1e-9)
	assert.Equal(t, 900, o.GetInt("analyzer.max_text_length"))
	assert.True(t, o.GetBool("analyzer.remote_enabled"))
	assert.Equal(t, "ollama", o.GetString("llm.provider"))

	v, ok := o.Get("llm.provider")
	assert.True(t, ok)
	assert.Equal(t, "ollama", v)
}

func TestOverlay_FallsBackToBase(t *testing.T) {
	o, _ := overlayWith(map[string]string{
		"WHISTLE_ANALYZER_SPAM_THRESHOLD":  "high",
		"WHISTLE_ANALYZER_MAX_TEXT_LENGTH": "  ",
		"WHISTLE_ANALYZER_REMOTE_ENABLED":  "maybe",
	}, map[string]any{
		"analyzer.spam_threshold":  0.6,
		"analyzer.max_text_length": 5000,
		"analyzer.remote_enabled":  true,
		"llm.model":                "llama3.2",
	})

	assert.InDelta(t, 0.6, o.GetFloat("analyzer.spam_threshold"), 1e-9, "unparseable override ignored")
	assert.Equal(t, 5000, o.GetInt("analyzer.max_text_length"), "blank override ignored")
	assert.True(t, o.GetBool("analyzer.remote_enabled"))
	assert.Equal(t, "llama3.2", o.GetString("llm.model"))
	_, ok := o.Get("missing")
	assert.False(t, ok)
}

func TestOverlay_WritesGoToBase(t *testing.T) {
	o, base := overlayWith(map[string]string{"WHISTLE_LLM_MODEL": "from-env"}, nil)

	require.NoError(t, o.Set("llm.model", "from-file"))
	require.NoError(t, o.SetAll(map[string]any{"llm.provider": "ollama", "llm.base_url": "http://gpu:11434"}))

	assert.Equal(t, "from-file", base.GetString("llm.model"))
	assert.Equal(t, "ollama", base.GetString("llm.provider"))
	assert.Equal(t, "http://gpu:11434", o.GetString("llm.base_url"))
	assert.Equal(t, "from-env", o.GetString("llm.model"), "override still wins on read")
	assert.NoError(t, o.Save())
	assert.NoError(t, o.Load())
	assert.Equal(t, base.Path(), o.Path())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("WHISTLE_TEST_DOTENV=from-file\nWHISTLE_TEST_PRESET=from-file\n"), 0600))
	t.Setenv("WHISTLE_TEST_PRESET", "from-shell")
	t.Cleanup(func() { _ = os.Unsetenv("WHISTLE_TEST_DOTENV") })

	err := LoadDotEnv(filepath.Join(dir, "missing.env"), path)

	require.NoError(t, err)
	assert.Equal(t, "from-file", os.Getenv("WHISTLE_TEST_DOTENV"))
	assert.Equal(t, "from-shell", os.Getenv("WHISTLE_TEST_PRESET"))

	o := NewOverlay(memory.NewConfigStore())
	assert.Equal(t, "from-file", o.GetString("test.dotenv"))
}
