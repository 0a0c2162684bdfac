// Package creds persists session credentials between process runs so the
// client can restore a session at startup without a network round-trip.
package creds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/platewise/platewise/client/internal/types"
)

const fileName = "session.json"

// Store is a file-backed credential store. One JSON file per base directory.
type Store struct {
	basePath string
}

// NewStore creates a Store and ensures the base directory exists.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory %s: %w", basePath, err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) path() string { return filepath.Join(s.basePath, fileName) }

// Save writes the session, replacing any previous one. The write is atomic
// (temp file + rename) so a crash never leaves a half-written session.
func (s *Store) Save(sess types.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Load reads the persisted session. Returns (nil, nil) when no session has
// been saved; local storage is trusted and re-validated lazily on the first
// real operation.
func (s *Store) Load() (*types.Session, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var sess types.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &sess, nil
}

// Clear removes the persisted session. Clearing an absent session is a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
