package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

const promptReadme = `# Whistle prompts

These templates are sent to the configured LLM provider.

- classify.txt classifies one complaint. It must contain {{categories}} and
  {{complaint}} and must still ask for a JSON object with the fields
  category, urgency, sentiment, sentiment_score, spam_score and confidence.
- narrate.txt writes the executive summary. It must contain {{figures}}.

A template missing a placeholder is ignored and the built-in prompt is used.
Edits are picked up on the next analysis. Delete a file to restore the
built-in prompt.
`

// PromptStore reads prompt templates from <dir>/<name>.txt.
//
// The directory is seeded with the built-in templates on first use. Cached
// templates are re-read when the file modification time changes.
type PromptStore struct {
	dir string

	seedOnce sync.Once

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

type cachedPrompt struct {
	modTime time.Time
	text    string
}

// NewPromptStore returns a store rooted at dir, or ~/.whistle/prompts when
// dir is empty. No files are touched until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".whistle", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]cachedPrompt)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template for name. Unknown names are ErrNotFound. A
// missing file yields the built-in template. An unreadable file or one that
// lacks a required placeholder is an ErrInvalidInput error.
func (s *PromptStore) Load(name string) (string, error) {
	def, ok := driven.DefaultPrompts[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}
	s.seedOnce.Do(s.seed)

	path := s.path(name)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: prompt %s: %v", domain.ErrInvalidInput, path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cache[name]; ok && c.modTime.Equal(info.ModTime()) {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: prompt %s: %v", domain.ErrInvalidInput, path, err)
	}
	text := strings.TrimSpace(string(data))
	if err := checkPlaceholders(name, text); err != nil {
		return "", fmt.Errorf("%w: prompt %s: %v", domain.ErrInvalidInput, path, err)
	}
	s.cache[name] = cachedPrompt{modTime: info.ModTime(), text: text}
	return text, nil
}

// Reload drops every cached template.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// seed writes the built-in templates and README into an empty directory.
// Failures only mean the user has nothing to edit, so Load carries on with
// the defaults.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return
	}
	files := map[string]string{"README.md": promptReadme}
	for name, text := range driven.DefaultPrompts {
		files[name+".txt"] = text + "\n"
	}
	for file, text := range files {
		f, err := os.OpenFile(filepath.Join(s.dir, file), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			continue
		}
		_, _ = f.WriteString(text)
		_ = f.Close()
	}
}

func checkPlaceholders(name, text string) error {
	var missing []string
	for _, p := range driven.PromptPlaceholders[name] {
		if !strings.Contains(text, p) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}
