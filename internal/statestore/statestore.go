// Package statestore persists the live timer engine state so an open
// session and today's totals survive a process restart.
package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marender/immertrack/internal/model"
)

// Store keeps the engine state in a single JSON file.
type Store struct {
	path string
}

// New returns a store backed by the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted engine state. The second return value is false
// when no state has been saved yet; that is not an error.
func (s *Store) Load() (model.EngineState, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return model.EngineState{}, false, nil
	}
	if err != nil {
		return model.EngineState{}, false, fmt.Errorf("storage error reading %s: %w", s.path, err)
	}

	var st model.EngineState
	if err := json.Unmarshal(data, &st); err != nil {
		backupPath := s.path + ".corrupt"
		_ = os.Rename(s.path, backupPath)
		return model.EngineState{}, false, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", s.path, backupPath, err)
	}
	return st, true, nil
}

// Save atomically writes the engine state.
func (s *Store) Save(st model.EngineState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
