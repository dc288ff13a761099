package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySpamThreshold  = "analyzer.spam_threshold"
	keyMinConfidence  = "analyzer.min_confidence"
	keyMinTextLength  = "analyzer.min_text_length"
	keyMaxTextLength  = "analyzer.max_text_length"
	keyRemoteEnabled  = "analyzer.remote_enabled"
	keyTimeoutSeconds = "analyzer.timeout_seconds"
	keyTemperature    = "analyzer.temperature"
	keyRequestsPerSec = "analyzer.requests_per_second"
	keyFallbackFactor = "analyzer.fallback_factor"
	keyRulesPath      = "analyzer.rules_path"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyStoreBackend   = "store.backend"
	keyStoreDataDir   = "store.data_dir"
)

const defaultOllamaLocal = "http://localhost:11434"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
)

// settableKeys lists the keys Set accepts and how their values parse.
// Operator password hash and token secret are managed by OperatorService.
var settableKeys = map[string]valueKind{
	keySpamThreshold:    kindFloat,
	keyMinConfidence:    kindFloat,
	keyMinTextLength:    kindInt,
	keyMaxTextLength:    kindInt,
	keyRemoteEnabled:    kindBool,
	keyTimeoutSeconds:   kindInt,
	keyTemperature:      kindFloat,
	keyRequestsPerSec:   kindFloat,
	keyFallbackFactor:   kindFloat,
	keyRulesPath:        kindString,
	keyLLMProvider:      kindString,
	keyLLMModel:         kindString,
	keyLLMBaseURL:       kindString,
	keyLLMAPIKey:        kindString,
	keyStoreBackend:     kindString,
	keyStoreDataDir:     kindString,
	keyOperatorUsername: kindString,
	keyOperatorTTL:      kindInt,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	llmChecker  driven.LLMChecker
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, llmChecker driven.LLMChecker) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		llmChecker:  llmChecker,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	d := defaults.Analyzer

	settings := &domain.AppSettings{
		Analyzer: domain.AnalyzerSettings{
			SpamThreshold:     s.getFloat(keySpamThreshold, d.SpamThreshold),
			MinConfidence:     s.getFloat(keyMinConfidence, d.MinConfidence),
			MinTextLength:     s.getInt(keyMinTextLength, d.MinTextLength),
			MaxTextLength:     s.getInt(keyMaxTextLength, d.MaxTextLength),
			RemoteEnabled:     s.getBool(keyRemoteEnabled, d.RemoteEnabled),
			Timeout:           time.Duration(s.getInt(keyTimeoutSeconds, int(d.Timeout/time.Second))) * time.Second,
			Temperature:       s.getFloat(keyTemperature, d.Temperature),
			RequestsPerSecond: s.getFloat(keyRequestsPerSec, d.RequestsPerSecond),
			FallbackFactor:    s.getFloat(keyFallbackFactor, d.FallbackFactor),
			RulesPath:         s.configStore.GetString(keyRulesPath),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Store: domain.StoreSettings{
			Backend: s.getBackend(defaults.Store.Backend),
			DataDir: s.configStore.GetString(keyStoreDataDir),
		},
		Operator: domain.OperatorSettings{
			Username:     s.getString(keyOperatorUsername, defaults.Operator.Username),
			PasswordHash: s.configStore.GetString(keyOperatorHash),
			TokenSecret:  s.configStore.GetString(keyOperatorSecret),
			SessionTTL:   time.Duration(s.getInt(keyOperatorTTL, int(defaults.Operator.SessionTTL/time.Minute))) * time.Minute,
		},
	}

	return settings, nil
}

// Save persists application settings.
// Operator credentials are not written; use OperatorService for those.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	a := settings.Analyzer
	values := map[string]any{
		keySpamThreshold:    a.SpamThreshold,
		keyMinConfidence:    a.MinConfidence,
		keyMinTextLength:    a.MinTextLength,
		keyMaxTextLength:    a.MaxTextLength,
		keyRemoteEnabled:    a.RemoteEnabled,
		keyTimeoutSeconds:   int(a.Timeout / time.Second),
		keyTemperature:      a.Temperature,
		keyRequestsPerSec:   a.RequestsPerSecond,
		keyFallbackFactor:   a.FallbackFactor,
		keyRulesPath:        a.RulesPath,
		keyLLMProvider:      settings.LLM.Provider.String(),
		keyLLMModel:         settings.LLM.Model,
		keyLLMBaseURL:       settings.LLM.BaseURL,
		keyStoreBackend:     settings.Store.Backend.String(),
		keyStoreDataDir:     settings.Store.DataDir,
		keyOperatorUsername: settings.Operator.Username,
		keyOperatorTTL:      int(settings.Operator.SessionTTL / time.Minute),
	}
	if settings.LLM.APIKey != "" {
		values[keyLLMAPIKey] = settings.LLM.APIKey
	}
	if err := s.configStore.SetAll(values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Keys lists the settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set updates a single setting from its string form.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s expects a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s expects a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	default:
		parsed = value
	}

	if err := validateSetting(key, parsed); err != nil {
		return err
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func validateSetting(key string, v any) error {
	switch key {
	case keySpamThreshold, keyMinConfidence, keyFallbackFactor:
		if f := v.(float64); f > 1 {
			return fmt.Errorf("%w: %s must be within [0, 1]", domain.ErrInvalidInput, key)
		}
	case keyTemperature:
		if f := v.(float64); f > 2 {
			return fmt.Errorf("%w: %s must be within [0, 2]", domain.ErrInvalidInput, key)
		}
	case keyLLMProvider:
		if p := domain.AIProvider(v.(string)); p != "" && !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, p)
		}
	case keyStoreBackend:
		if b := domain.StoreBackend(v.(string)); !b.IsValid() {
			return fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, b)
		}
	}
	return nil
}

// SetLLMProvider configures the LLM provider and enables remote analysis.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaLocal
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey
	settings.Analyzer.RemoteEnabled = true

	return s.Save(settings)
}

// Validate checks if current settings are consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	a := settings.Analyzer

	if a.MaxTextLength <= 0 {
		return fmt.Errorf("max text length must be positive")
	}
	if a.MinTextLength >= a.MaxTextLength {
		return fmt.Errorf("min text length %d must be below max text length %d", a.MinTextLength, a.MaxTextLength)
	}
	if a.RemoteEnabled && !settings.LLM.IsConfigured() {
		return fmt.Errorf("remote analysis is enabled but no LLM provider is configured")
	}
	if !settings.Store.Backend.IsValid() {
		return fmt.Errorf("invalid store backend: %s", settings.Store.Backend)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// CheckLLM pings the configured provider.
func (s *SettingsService) CheckLLM(ctx context.Context) error {
	if s.llmChecker == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.llmChecker.Check(ctx, &settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	backend := domain.StoreBackend(s.configStore.GetString(keyStoreBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
