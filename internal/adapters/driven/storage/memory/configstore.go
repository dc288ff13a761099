package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Tests seed it with the flat dotted
// keys the TOML store would produce.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns a store holding the merged seed maps.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: map[string]any{}}
	for _, m := range seed {
		maps.Copy(s.values, m)
	}
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func typed[T any](s *ConfigStore, key string) T {
	v, _ := s.Get(key)
	t, _ := v.(T)
	return t
}

// numeric converts the number types a decoded TOML document or a test seed
// may hold. Anything else is zero.
func numeric[N int | float64](s *ConfigStore, key string) N {
	switch v := typed[any](s, key).(type) {
	case int:
		return N(v)
	case int64:
		return N(v)
	case float64:
		return N(v)
	}
	return 0
}

func (s *ConfigStore) GetString(key string) string { return typed[string](s, key) }
func (s *ConfigStore) GetBool(key string) bool { return typed[bool](s, key) }
func (s *ConfigStore) GetInt(key string) int { return numeric[int](s, key) }
func (s *ConfigStore) GetFloat(key string) float64 { return numeric[float64](s, key) }

func (s *ConfigStore) Set(key string, value any) error {
	return s.SetAll(map[string]any{key: value})
}

func (s *ConfigStore) SetAll(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.values, values)
	return nil
}

// Save and Load have nothing to persist.
func (s *ConfigStore) Save() error { return nil }
func (s *ConfigStore) Load() error { return nil }

// Path reports a pseudo path so settings output has something to show.
func (s *ConfigStore) Path() string { return ":memory:" }
