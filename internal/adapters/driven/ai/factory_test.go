package ai

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// countingLLM counts calls and returns a fixed reply.
type countingLLM struct {
	calls  atomic.Int32
	closed bool
}

func (c *countingLLM) Complete(context.Context, driven.CompletionRequest) (string, error) {
	c.calls.Add(1)
	return "ok", nil
}

func (c *countingLLM) ModelName() string          { return "counting" }
func (c *countingLLM) Ping(context.Context) error { return nil }
func (c *countingLLM) Close() error               { c.closed = true; return nil }

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})

	t.Run("closes the llm", func(t *testing.T) {
		llm := &countingLLM{}
		(&InitResult{LLMService: llm}).Close()
		assert.True(t, llm.closed)
	})
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
		wantErr  bool
	}{
		{name: "nil settings returns nil", settings: nil, wantNil: true},
		{name: "unconfigured settings returns nil", settings: &domain.LLMSettings{}, wantNil: true},
		{
			name:     "ollama provider creates service",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: "http://localhost:11434", Model: "llama3.2"},
		},
		{
			name:     "openai provider creates service",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "test-key", Model: "gpt-4o-mini"},
		},
		{
			name:     "anthropic provider creates service",
			settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "test-key"},
		},
		{
			name:     "cloud provider without key is not configured",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
		{
			// unknown provider is not valid, so IsConfigured() returns false
			name:     "unknown provider returns nil",
			settings: &domain.LLMSettings{Provider: "unknown", APIKey: "test-key"},
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, svc)
			} else {
				require.NotNil(t, svc)
				svc.Close()
			}
		})
	}
}

func TestCreateLLMService_ModelNames(t *testing.T) {
	svc, err := CreateLLMService(&domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k", Model: "claude-test"})
	require.NoError(t, err)
	assert.Equal(t, "claude-test", svc.ModelName())

	svc, err = CreateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", svc.ModelName())
}

func TestInit(t *testing.T) {
	t.Run("remote disabled", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama}

		result := Init(&settings)

		assert.Nil(t, result.LLMService)
		assert.False(t, result.FellBack)
		assert.Empty(t, result.Warnings)
	})

	t.Run("remote enabled without provider falls back", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Analyzer.RemoteEnabled = true

		result := Init(&settings)

		assert.Nil(t, result.LLMService)
		assert.True(t, result.FellBack)
		assert.Len(t, result.Warnings, 1)
	})

	t.Run("remote enabled wraps provider", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Analyzer.RemoteEnabled = true
		settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "mistral"}

		result := Init(&settings)
		defer result.Close()

		require.NotNil(t, result.LLMService)
		assert.IsType(t, &RateLimited{}, result.LLMService)
		assert.Equal(t, "mistral", result.LLMService.ModelName())
	})

	t.Run("nil settings", func(t *testing.T) {
		assert.Nil(t, Init(nil).LLMService)
	})
}

func TestRateLimited_Throttles(t *testing.T) {
	inner := &countingLLM{}
	limited := NewRateLimited(inner, 20)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := limited.Complete(context.Background(), driven.UserPrompt("", "x"))
		require.NoError(t, err)
	}

	// Burst of one: the second and third calls each wait 50ms.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestRateLimited_RespectsContext(t *testing.T) {
	inner := &countingLLM{}
	limited := NewRateLimited(inner, 0.01)

	_, err := limited.Complete(context.Background(), driven.CompletionRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Complete(ctx, driven.CompletionRequest{})

	assert.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load(), "throttled call never reaches the provider")
}

func TestRateLimited_Unlimited(t *testing.T) {
	inner := &countingLLM{}
	limited := NewRateLimited(inner, 0)

	for i := 0; i < 50; i++ {
		_, err := limited.Complete(context.Background(), driven.UserPrompt("", "x"))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(50), inner.calls.Load())
}
