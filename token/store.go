package token

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/jrsteele09/go-trakt-server/internal/errors"
)

// Store persists the current authorization token between process runs.
type Store interface {
	// Load returns the stored token, or errors.ErrTokenNotFound if no token
	// has been persisted yet.
	Load() (*Token, error)

	// Save replaces the stored token wholesale.
	Save(*Token) error
}

// FileStore keeps the token as a JSON document on disk. It is single-writer:
// only the authenticator (and the refresh hook) write it, and no file
// locking is performed.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrTokenNotFound, "%s", s.path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode token file %s: %w", s.path, err)
	}
	return &t, nil
}

func (s *FileStore) Save(t *Token) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
