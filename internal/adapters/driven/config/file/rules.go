package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// Ensure RuleStore implements the interface.
var _ driven.RuleStore = (*RuleStore)(nil)

// reloadDebounce collapses the burst of events editors emit on save.
const reloadDebounce = 150 * time.Millisecond

const rulesHeader = `# whistle heuristic analyzer rules.
# Terms match case-insensitively at the start of a word.
# Patterns are regular expressions. Changes are picked up without a restart.

`

// RuleStore keeps the heuristic keyword tables in a TOML file.
type RuleStore struct {
	mu   sync.Mutex
	path string
}

// NewRuleStore creates a rule store for the given file.
// If path is empty, defaults to ~/.whistle/rules.toml.
func NewRuleStore(path string) (*RuleStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(home, ".whistle", "rules.toml")
	}
	return &RuleStore{path: path}, nil
}

// Path returns the rules file location.
func (s *RuleStore) Path() string {
	return s.path
}

// Load reads and validates the rules file. A missing file is created
// from the built-in defaults.
func (s *RuleStore) Load() (*domain.Rules, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		rules := domain.DefaultRules()
		if err := s.writeDefaults(&rules); err != nil {
			return nil, err
		}
		return &rules, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	return parseRules(data)
}

func parseRules(data []byte) (*domain.Rules, error) {
	var rules domain.Rules
	if err := toml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("%w: parse rules: %v", domain.ErrInvalidInput, err)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

func (s *RuleStore) writeDefaults(rules *domain.Rules) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create rules directory: %w", err)
	}
	data, err := toml.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	if err := os.WriteFile(s.path, append([]byte(rulesHeader), data...), 0600); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}

// Watch reloads the rules whenever the file changes and hands valid
// results to onChange. The parent directory is watched so that editors
// which replace the file on save are followed.
func (s *RuleStore) Watch(ctx context.Context, onChange func(*domain.Rules), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	report := func(err error) {
		if onError != nil {
			onError(err)
		}
	}

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(reloadDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			report(fmt.Errorf("watch rules: %w", err))

		case <-timer.C:
			data, err := os.ReadFile(s.path)
			if err != nil {
				report(fmt.Errorf("read rules: %w", err))
				continue
			}
			rules, err := parseRules(data)
			if err != nil {
				report(err)
				continue
			}
			if onChange != nil {
				onChange(rules)
			}
		}
	}
}
