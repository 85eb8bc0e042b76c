package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-trakt-server/internal/config"
	"github.com/jrsteele09/go-trakt-server/internal/errors"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadCredentials(t *testing.T) {
	path := writeFile(t, "client_id = abc123\nclient_secret=s3cret\n")

	creds, err := config.LoadCredentials(path)
	require.NoError(t, err)
	require.Equal(t, "abc123", creds.ClientID)
	require.Equal(t, "s3cret", creds.ClientSecret)
}

func TestLoadCredentialsSkipsMalformedLines(t *testing.T) {
	path := writeFile(t, "junk line\n\nclient_id=abc\nclient_secret=def\n# trailing comment\n")

	creds, err := config.LoadCredentials(path)
	require.NoError(t, err)
	require.Equal(t, "abc", creds.ClientID)
}

func TestLoadCredentialsMissingKey(t *testing.T) {
	path := writeFile(t, "client_id=abc\n")

	_, err := config.LoadCredentials(path)
	require.ErrorIs(t, err, errors.ErrMissingCredential)
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	_, err := config.LoadCredentials(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadKeyValuesKeepsEqualsInValue(t *testing.T) {
	path := writeFile(t, "SYNC_PASSWORD=a=b=c\n")

	values, err := config.LoadKeyValues(path)
	require.NoError(t, err)
	require.Equal(t, "a=b=c", values["SYNC_PASSWORD"])
}
