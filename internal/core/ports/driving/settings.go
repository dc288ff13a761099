package driving

import (
	"context"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by its dotted key.
	Set(key, value string) error

	// Keys lists the settable keys.
	Keys() []string

	// SetLLMProvider configures the LLM provider and enables remote analysis.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks if current settings are consistent.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// CheckLLM pings the configured provider. It returns nil when no
	// provider is configured.
	CheckLLM(ctx context.Context) error
}
