// Package jsonfile provides the default complaint store: a JSON array of
// records in insertion order plus a separate status history document.
//
// Every mutation rewrites the affected file through a temporary file and
// an atomic rename, so a crash leaves either the old or the new document.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ComplaintStore = (*Store)(nil)

// File names inside the data directory.
const (
	ComplaintsFile = "complaints.json"
	HistoryFile    = "status_history.json"
)

// Store keeps complaints in JSON files under a data directory.
type Store struct {
	mu         sync.RWMutex
	dir        string
	complaints []domain.Complaint
	index      map[string]int
	history    []domain.StatusChange
}

// New opens or creates a JSON store in dir.
// If dir is empty, defaults to ~/.whistle/data.
func New(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".whistle", "data")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &Store{dir: dir, index: make(map[string]int)}
	if err := readJSON(filepath.Join(dir, ComplaintsFile), &s.complaints); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, HistoryFile), &s.history); err != nil {
		return nil, err
	}
	for i, c := range s.complaints {
		if _, dup := s.index[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s in %s", domain.ErrInvalidInput, c.ID, ComplaintsFile)
		}
		s.index[c.ID] = i
	}
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidInput, filepath.Base(path), err)
	}
	return nil
}

// writeJSON replaces path atomically.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailure, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", domain.ErrWriteFailure, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", domain.ErrWriteFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailure, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailure, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailure, err)
	}
	return nil
}

// Append stores a new complaint and persists the record list.
func (s *Store) Append(_ context.Context, c *domain.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[c.ID]; exists {
		return domain.ErrAlreadyExists
	}

	next := append(s.complaints[:len(s.complaints):len(s.complaints)], *c)
	if err := writeJSON(filepath.Join(s.dir, ComplaintsFile), next); err != nil {
		return err
	}
	s.complaints = next
	s.index[c.ID] = len(next) - 1
	return nil
}

// Get retrieves a complaint by id.
func (s *Store) Get(_ context.Context, id string) (*domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := s.complaints[i]
	return &c, nil
}

// UpdateStatus changes a status and appends to the history.
// The record file is restored if the history cannot be written.
func (s *Store) UpdateStatus(_ context.Context, change domain.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[change.ComplaintID]
	if !ok {
		return domain.ErrNotFound
	}

	next := make([]domain.Complaint, len(s.complaints))
	copy(next, s.complaints)
	next[i].Status = change.To
	if err := writeJSON(filepath.Join(s.dir, ComplaintsFile), next); err != nil {
		return err
	}

	history := append(s.history[:len(s.history):len(s.history)], change)
	if err := writeJSON(filepath.Join(s.dir, HistoryFile), history); err != nil {
		if rbErr := writeJSON(filepath.Join(s.dir, ComplaintsFile), s.complaints); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	s.complaints = next
	s.history = history
	return nil
}

// All returns a copy of every complaint in insertion order.
func (s *Store) All(_ context.Context) ([]domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Complaint, len(s.complaints))
	copy(out, s.complaints)
	return out, nil
}

// History returns the status changes of a complaint, oldest first.
func (s *Store) History(_ context.Context, id string) ([]domain.StatusChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.index[id]; !ok {
		return nil, domain.ErrNotFound
	}
	var out []domain.StatusChange
	for _, h := range s.history {
		if h.ComplaintID == id {
			out = append(out, h)
		}
	}
	return out, nil
}

// Close is a no-op; every mutation is already on disk.
func (s *Store) Close() error {
	return nil
}
