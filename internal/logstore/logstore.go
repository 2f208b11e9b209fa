// Package logstore persists one immutable DayLog JSON file per calendar
// date. A save is all-or-nothing: files are written to a temp path and
// renamed into place.
package logstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marender/immertrack/internal/model"
	"github.com/marender/immertrack/internal/timeutil"
)

// Store reads and writes day logs under a single directory, one
// <YYYY-MM-DD>.json file per date.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created lazily on
// the first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(date string) string {
	return filepath.Join(s.dir, date+".json")
}

// Save upserts the log for its date, overwriting any existing record.
func (s *Store) Save(log model.DayLog) error {
	if _, err := timeutil.ParseDate(log.Date, time.UTC); err != nil {
		return fmt.Errorf("invalid log date %q: %w", log.Date, err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	path := s.path(log.Date)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Load returns the log for the given date, or nil when no record exists.
// Absence is not an error; a corrupt file is backed up and reported.
func (s *Store) Load(date string) (*model.DayLog, error) {
	path := s.path(date)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var log model.DayLog
	if err := json.Unmarshal(data, &log); err != nil {
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return nil, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return &log, nil
}

// LoadMonth returns every log that exists for calendar days in the given
// YYYY-MM month, in date order. Missing days are skipped, not errors.
func (s *Store) LoadMonth(yearMonth string) ([]model.DayLog, error) {
	first, err := timeutil.ParseYearMonth(yearMonth, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", yearMonth, err)
	}

	var logs []model.DayLog
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		log, err := s.Load(timeutil.DateString(d))
		if err != nil {
			return nil, err
		}
		if log != nil {
			logs = append(logs, *log)
		}
	}
	return logs, nil
}

// UpdateProjectTotal point-edits one project's total time in a stored log,
// leaving its session history untouched. Missing dates or projects are a
// no-op.
func (s *Store) UpdateProjectTotal(date, projectID string, totalMs int64) error {
	log, err := s.Load(date)
	if err != nil {
		return err
	}
	if log == nil {
		return nil
	}
	for i := range log.Projects {
		if log.Projects[i].ID == projectID {
			log.Projects[i].TotalTime = totalMs
			return s.Save(*log)
		}
	}
	return nil
}

// UpdateProjectDescription point-edits one project's per-day description in
// a stored log. Missing dates or projects are a no-op.
func (s *Store) UpdateProjectDescription(date, projectID, description string) error {
	log, err := s.Load(date)
	if err != nil {
		return err
	}
	if log == nil {
		return nil
	}
	for i := range log.Projects {
		if log.Projects[i].ID == projectID {
			log.Projects[i].Description = description
			return s.Save(*log)
		}
	}
	return nil
}
