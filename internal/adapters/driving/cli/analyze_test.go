package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

func TestAnalyze_RequiresSession(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "", "analyze", "someone keeps stealing from the safe")

	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestAnalyze_ShowsDiagnostics(t *testing.T) {
	env := setupTestServices(t)
	env.login(t)

	out, err := run(t, "", "analyze", "My manager harassed me again today and I feel unsafe")

	require.NoError(t, err)
	for _, field := range []string{"Category:", "Urgency:", "Sentiment:", "Spam score:", "Confidence:", "Method:"} {
		assert.Contains(t, out, field)
	}
}

func TestAnalyze_DoesNotStore(t *testing.T) {
	env := setupTestServices(t)
	env.login(t)

	_, err := run(t, "", "analyze", "Expense reports are being falsified")
	require.NoError(t, err)

	assert.Equal(t, 0, storedCount(t, env))
}

func TestRules_PrintsPath(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "", "rules")

	require.NoError(t, err)
	assert.Contains(t, out, "/tmp/rules.toml")
}
