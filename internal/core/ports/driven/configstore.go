package driven

// ConfigStore holds the flat dot-notation settings of whistle, such as
// "analyzer.spam_threshold" or "operator.password_hash".
//
// Typed getters return the zero value for missing keys and type mismatches,
// so callers apply their own defaults.
type ConfigStore interface {
	// Get retrieves a raw value and whether the key exists.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int

	// GetFloat also accepts integer values.
	GetFloat(key string) float64

	GetBool(key string) bool

	// Set stores one value and persists it immediately.
	Set(key string, value any) error

	// SetAll stores several values with a single write. Either every value
	// is persisted or, on error, the stored configuration is unchanged.
	SetAll(values map[string]any) error

	// Save persists the current configuration.
	Save() error

	// Load re-reads the configuration from storage.
	Load() error

	// Path returns where the configuration lives.
	Path() string
}
