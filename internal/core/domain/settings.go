package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a language model provider for remote analysis.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend selects the record store implementation.
type StoreBackend string

// Available record store backends.
const (
	// StoreJSON keeps records in a single JSON document.
	StoreJSON StoreBackend = "json"

	// StoreSQLite keeps records in an embedded SQLite database.
	StoreSQLite StoreBackend = "sqlite"

	// StoreMemory keeps records in process memory only.
	StoreMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreJSON, StoreSQLite, StoreMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// AnalyzerSettings holds the tunable thresholds of the text analyzer.
type AnalyzerSettings struct {
	// SpamThreshold is the score above which a record is flagged as spam.
	SpamThreshold float64

	// MinConfidence is the floor below which a classification is a suggestion.
	MinConfidence float64

	// MinTextLength is the length below which the spam heuristic penalises text.
	MinTextLength int

	// MaxTextLength is the longest accepted submission, in characters.
	MaxTextLength int

	// RemoteEnabled turns on language-model assisted analysis.
	RemoteEnabled bool

	// Timeout bounds each remote call.
	Timeout time.Duration

	// Temperature is sent with every remote request.
	Temperature float64

	// RequestsPerSecond rate limits remote calls.
	RequestsPerSecond float64

	// FallbackFactor scales heuristic confidence when used as a fallback.
	FallbackFactor float64

	// RulesPath overrides the location of the keyword tables.
	RulesPath string
}

// StoreSettings selects and locates the record store.
type StoreSettings struct {
	Backend StoreBackend
	DataDir string
}

// OperatorSettings holds operator credentials and session lifetime.
type OperatorSettings struct {
	Username     string
	PasswordHash string
	TokenSecret  string
	SessionTTL   time.Duration
}

// IsConfigured returns true once operator credentials exist.
func (o OperatorSettings) IsConfigured() bool {
	return o.Username != "" && o.PasswordHash != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Analyzer holds classification thresholds.
	Analyzer AnalyzerSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Store holds record store settings.
	Store StoreSettings

	// Operator holds operator credential settings.
	Operator OperatorSettings
}

// Defaults shared by settings and services.
const (
	DefaultSpamThreshold     = 0.6
	DefaultMinConfidence     = 0.7
	DefaultMinTextLength     = 20
	DefaultMaxTextLength     = 5000
	DefaultAnalyzerTimeout   = 30 * time.Second
	DefaultTemperature       = 0.1
	DefaultRequestsPerSecond = 1.0
	DefaultFallbackFactor    = 0.75
	DefaultSessionTTL        = 30 * time.Minute
	DefaultOperatorUsername  = "admin"
	MinPasswordLength        = 6
	MaxLoginAttempts         = 3
)

// DefaultAppSettings returns settings with sensible defaults.
// Remote analysis and operator credentials are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Analyzer: AnalyzerSettings{
			SpamThreshold:     DefaultSpamThreshold,
			MinConfidence:     DefaultMinConfidence,
			MinTextLength:     DefaultMinTextLength,
			MaxTextLength:     DefaultMaxTextLength,
			RemoteEnabled:     false,
			Timeout:           DefaultAnalyzerTimeout,
			Temperature:       DefaultTemperature,
			RequestsPerSecond: DefaultRequestsPerSecond,
			FallbackFactor:    DefaultFallbackFactor,
		},
		// LLM is left unconfigured - user must set up via settings
		LLM: LLMSettings{},
		Store: StoreSettings{
			Backend: StoreJSON,
		},
		Operator: OperatorSettings{
			Username:   DefaultOperatorUsername,
			SessionTTL: DefaultSessionTTL,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}
