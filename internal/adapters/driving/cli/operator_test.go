package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

func TestOperatorSetup(t *testing.T) {
	env := setupTestServices(t)

	out, err := run(t, "\n"+testPassword+"\n"+testPassword+"\n", "operator", "setup")

	require.NoError(t, err)
	assert.Contains(t, out, "Operator account created")
	assert.True(t, env.operator.IsConfigured())

	_, err = run(t, "", "operator", "setup")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestOperatorSetup_PasswordMismatch(t *testing.T) {
	env := setupTestServices(t)

	_, err := run(t, "admin\nfirst-one\nsecond-one\n", "operator", "setup")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, env.operator.IsConfigured())
}

func TestOperatorSetup_ShortPassword(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "admin\nabc\nabc\n", "operator", "setup")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOperatorLogin_Success(t *testing.T) {
	env := setupTestServices(t)
	env.login(t)
	require.NoError(t, env.operator.Logout())

	out, err := run(t, testPassword+"\n", "operator", "login", "-u", "admin")

	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin")

	out, err = run(t, "", "operator", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin")
}

func TestOperatorLogin_SecondAttemptSucceeds(t *testing.T) {
	env := setupTestServices(t)
	env.login(t)

	out, err := run(t, "admin\nwrong-pass\n"+testPassword+"\n", "operator", "login")

	require.NoError(t, err)
	assert.Contains(t, out, "Invalid credentials, 2 attempts left.")
	assert.Contains(t, out, "Logged in as admin")
}

func TestOperatorLogin_LocksAfterThreeFailures(t *testing.T) {
	env := setupTestServices(t)
	env.login(t)
	require.NoError(t, env.operator.Logout())

	out, err := run(t, "admin\nbad-1\nbad-2\nbad-3\n", "operator", "login")

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.Contains(t, err.Error(), "too many failed attempts")
	assert.Contains(t, out, "2 attempts left")
	assert.Contains(t, out, "1 attempts left")

	_, err = run(t, "", "complaint", "list")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestOperatorLogin_NoAccount(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "", "operator", "login")

	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestOperatorLogout(t *testing.T) {
	env := setupTestServices(t)
	env.login(t)

	out, err := run(t, "", "operator", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")

	out, err = run(t, "", "operator", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestOperatorPasswd_EndsSessions(t *testing.T) {
	env := setupTestServices(t)
	env.login(t)

	out, err := run(t, testPassword+"\n\nnew-password\nnew-password\n", "operator", "passwd")
	require.NoError(t, err)
	assert.Contains(t, out, "Credentials updated")

	_, err = run(t, "", "complaint", "list")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	_, err = run(t, "new-password\n", "operator", "login", "-u", "admin")
	assert.NoError(t, err)
}

func TestOperatorPasswd_WrongCurrentPassword(t *testing.T) {
	env := setupTestServices(t)
	env.login(t)

	_, err := run(t, "not-it\n\nnew-password\nnew-password\n", "operator", "passwd")

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestOperatorStatus_NoAccount(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "", "operator", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "No operator account")
}
