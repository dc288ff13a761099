package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// Ensure FileSessionStore implements the interface.
var _ driven.SessionStore = (*FileSessionStore)(nil)

// FileSessionStore keeps the operator token in a file readable only by the owner.
type FileSessionStore struct {
	path string
}

// NewFileSessionStore creates a session store.
// If path is empty, defaults to ~/.whistle/session.
func NewFileSessionStore(path string) (*FileSessionStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(home, ".whistle", "session")
	}
	return &FileSessionStore{path: path}, nil
}

// Path returns the token file location.
func (s *FileSessionStore) Path() string {
	return s.path
}

// Save writes the token with 0600 permissions.
func (s *FileSessionStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(s.path, 0600)
}

// Load returns the stored token or domain.ErrNotFound.
func (s *FileSessionStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", domain.ErrNotFound
	}
	return token, nil
}

// Clear removes the token file.
func (s *FileSessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
