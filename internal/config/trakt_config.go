package config

import (
	"os"
	"path/filepath"
)

type Trakt struct{}

var _ TraktConfig = Trakt{}

// GetTraktAPIURL returns the base URL of the trakt API. Overridable so tests
// and staging setups can point the client at a fake server.
func (Trakt) GetTraktAPIURL() string {
	return GetEnv(traktAPIVar, defaultAPIURL)
}

// GetConfigDir returns the directory holding the credentials file and the
// persisted auth token (default: $HOME/.trakt).
func (Trakt) GetConfigDir() string {
	if dir := os.Getenv(configDirVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trakt"
	}
	return filepath.Join(home, ".trakt")
}

func (t Trakt) GetCredentialsPath() string {
	return filepath.Join(t.GetConfigDir(), "credentials")
}

func (t Trakt) GetTokenPath() string {
	return filepath.Join(t.GetConfigDir(), "auth_token.json")
}
