package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

func storedCount(t *testing.T, env *testEnv) int {
	t.Helper()
	all, err := env.store.All(context.Background())
	require.NoError(t, err)
	return len(all)
}

func TestSubmit_FromArgs(t *testing.T) {
	env := setupTestServices(t)

	out, err := run(t, "", "submit", "The fire exit on the third floor is chained shut")

	require.NoError(t, err)
	assert.Contains(t, out, "Thank you. Your complaint has been received anonymously.")
	assert.Contains(t, out, "Reference: ")
	assert.Equal(t, 1, storedCount(t, env))
}

func TestSubmit_FromStdin(t *testing.T) {
	env := setupTestServices(t)

	out, err := run(t, "Someone is taking cash from the till every Friday\n", "submit", "-")

	require.NoError(t, err)
	assert.Contains(t, out, "Reference: ")
	assert.Equal(t, 1, storedCount(t, env))
}

func TestSubmit_EmptyTextIsRejected(t *testing.T) {
	env := setupTestServices(t)

	_, err := run(t, "   \n", "submit")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, storedCount(t, env))
}

func TestSubmit_NeedsNoSession(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "", "submit", "The printer on floor two has been broken for weeks")

	assert.NoError(t, err)
}

func TestSubmit_FromEmailFile(t *testing.T) {
	env := setupTestServices(t)
	path := filepath.Join(t.TempDir(), "forwarded.eml")
	msg := "From: Jane Doe <jane@corp.example>\n" +
		"Subject: Chained fire exit\n" +
		"\n" +
		"The fire exit on the third floor is chained shut every night.\n"
	require.NoError(t, os.WriteFile(path, []byte(msg), 0o600))

	out, err := run(t, "", "submit", "--file", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Reference: ")
	all, err := env.store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Contains(t, all[0].Text, "chained shut")
	assert.NotContains(t, all[0].Text, "jane")
}

func TestSubmit_FileAndArgsConflict(t *testing.T) {
	env := setupTestServices(t)
	path := filepath.Join(t.TempDir(), "c.txt")
	require.NoError(t, os.WriteFile(path, []byte("Broken ladder in the warehouse"), 0o600))

	_, err := run(t, "", "submit", "--file", path, "more text")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, storedCount(t, env))
}

func TestSubmit_UnsupportedFile(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "", "submit", "--file", "scan.pdf")

	assert.Error(t, err)
}
