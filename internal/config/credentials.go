package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jrsteele09/go-trakt-server/internal/errors"
)

// Credentials holds the API client identity read from the local secret store.
// Loaded once at startup and immutable for the process lifetime.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// LoadCredentials reads a line-oriented key=value file and extracts the
// client_id and client_secret entries. Lines without '=' are skipped,
// surrounding whitespace is trimmed.
func LoadCredentials(path string) (*Credentials, error) {
	values, err := LoadKeyValues(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds := &Credentials{
		ClientID:     values["client_id"],
		ClientSecret: values["client_secret"],
	}
	if creds.ClientID == "" {
		return nil, errors.Wrapf(errors.ErrMissingCredential, "client_id in %s", path)
	}
	if creds.ClientSecret == "" {
		return nil, errors.Wrapf(errors.ErrMissingCredential, "client_secret in %s", path)
	}
	return creds, nil
}

// LoadKeyValues parses a key=value file into a map. Values may themselves
// contain '=' characters; only the first one splits.
func LoadKeyValues(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), "=", 2)
		if len(parts) < 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		values[key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
