package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	version = v
	t.Cleanup(func() { version = original })
}

func TestVersion_PrintsBuildInfo(t *testing.T) {
	setupTestServices(t)
	withVersion(t, "1.4.0")

	out, err := run(t, "", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "whistle version 1.4.0")
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersion_Short(t *testing.T) {
	setupTestServices(t)
	withVersion(t, "1.4.0")

	out, err := run(t, "", "version", "--short")

	require.NoError(t, err)
	assert.Equal(t, "1.4.0\n", out)
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	withVersion(t, "dev")

	SetVersion("")
	assert.Equal(t, "dev", version)

	SetVersion("2.0.0")
	assert.Equal(t, "2.0.0", version)
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "", "--log-level", "loud", "version")

	assert.Error(t, err)
}
