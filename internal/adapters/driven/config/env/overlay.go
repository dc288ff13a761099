// Package env layers environment variables over a persistent config store.
//
// Every dot-notation key has an environment counterpart: the key is upper-cased,
// dots become underscores and the WHISTLE_ prefix is added, so
// "analyzer.spam_threshold" is overridden by WHISTLE_ANALYZER_SPAM_THRESHOLD.
// Values from a .env file are loaded with godotenv before the overlay is read.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// Prefix is prepended to every environment key.
const Prefix = "WHISTLE_"

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and variables that are already
// set win over file values.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Key returns the environment variable that overrides a config key.
func Key(configKey string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return Prefix + strings.ToUpper(r.Replace(configKey))
}

// Overlay reads environment overrides before falling back to the base store.
// Writes go to the base store; an override keeps winning on read until it is unset.
type Overlay struct {
	base   driven.ConfigStore
	lookup func(string) (string, bool)
}

// NewOverlay wraps base with environment overrides from the process environment.
func NewOverlay(base driven.ConfigStore) *Overlay {
	return &Overlay{base: base, lookup: os.LookupEnv}
}

// NewOverlayWithLookup wraps base with overrides from a custom lookup.
func NewOverlayWithLookup(base driven.ConfigStore, lookup func(string) (string, bool)) *Overlay {
	return &Overlay{base: base, lookup: lookup}
}

func (o *Overlay) env(key string) (string, bool) {
	v, ok := o.lookup(Key(key))
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Get returns the override as a string, or the base value.
func (o *Overlay) Get(key string) (any, bool) {
	if v, ok := o.env(key); ok {
		return v, true
	}
	return o.base.Get(key)
}

// GetString returns the override or the base value.
func (o *Overlay) GetString(key string) string {
	if v, ok := o.env(key); ok {
		return v
	}
	return o.base.GetString(key)
}

// GetInt parses the override. Unparseable overrides are ignored.
func (o *Overlay) GetInt(key string) int {
	if v, ok := o.env(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return o.base.GetInt(key)
}

// GetFloat parses the override. Unparseable overrides are ignored.
func (o *Overlay) GetFloat(key string) float64 {
	if v, ok := o.env(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return o.base.GetFloat(key)
}

// GetBool parses the override. Unparseable overrides are ignored.
func (o *Overlay) GetBool(key string) bool {
	if v, ok := o.env(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return o.base.GetBool(key)
}

// Set writes to the base store.
func (o *Overlay) Set(key string, value any) error {
	return o.base.Set(key, value)
}

// SetAll writes to the base store.
func (o *Overlay) SetAll(values map[string]any) error {
	return o.base.SetAll(values)
}

// Save persists the base store.
func (o *Overlay) Save() error {
	return o.base.Save()
}

// Load reloads the base store.
func (o *Overlay) Load() error {
	return o.base.Load()
}

// Path returns the base store path.
func (o *Overlay) Path() string {
	return o.base.Path()
}
