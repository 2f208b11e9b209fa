package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration for itt, stored in ~/.immertrack/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	// DataDir overrides the data directory. Empty = ~/.immertrack.
	DataDir string `json:"data_dir"`
	// DailyCapHours is the ceiling on combined tracked time per day.
	DailyCapHours int `json:"daily_cap_hours"`
	// RolloverCheckSeconds is the interval between day-rollover checks.
	RolloverCheckSeconds int `json:"rollover_check_seconds"`
	// BackstopSaveSeconds is the interval between crash-safety saves of
	// the in-progress day.
	BackstopSaveSeconds int `json:"backstop_save_seconds"`
	// Timezone is the IANA timezone used for CSV export times
	// (e.g. "Europe/Berlin"). Empty = the system's local timezone.
	Timezone string `json:"timezone"`
}

const (
	// DefaultDailyCapHours bounds the combined tracked time per calendar day.
	DefaultDailyCapHours = 12
	// DefaultRolloverCheckSeconds keeps rollover detection within a minute
	// of midnight.
	DefaultRolloverCheckSeconds = 60
	// DefaultBackstopSaveSeconds trades at most five minutes of tracked
	// time against a crash.
	DefaultBackstopSaveSeconds = 300
)

func defaultConfig() Config {
	return Config{
		DailyCapHours:        DefaultDailyCapHours,
		RolloverCheckSeconds: DefaultRolloverCheckSeconds,
		BackstopSaveSeconds:  DefaultBackstopSaveSeconds,
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// itt configuration – ~/.immertrack/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Edit this file to customise itt behaviour.
{
  // Data directory holding state.json, projects.json and time-logs/.
  // Leave empty to use ~/.immertrack.
  "data_dir": "",

  // Hard ceiling on combined tracked time per calendar day, in hours.
  "daily_cap_hours": 12,

  // How often the widget checks whether the calendar day has rolled over.
  "rollover_check_seconds": 60,

  // How often the in-progress day is saved as a crash-safety backstop.
  "backstop_save_seconds": 300,

  // IANA timezone for CSV export times, e.g. "Europe/Berlin".
  // Leave empty to use the system's local timezone.
  "timezone": ""
}
`

// BaseDir returns the root data directory (~/.immertrack).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".immertrack"), nil
}

// ResolveDataDir returns the configured data directory, falling back to
// the default base directory.
func (c Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	return BaseDir()
}

// Location resolves the configured timezone, defaulting to local time.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DailyCapMs returns the daily cap in milliseconds.
func (c Config) DailyCapMs() int64 {
	return int64(c.DailyCapHours) * 60 * 60 * 1000
}

func configFilePath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.immertrack/config.json, creating it with annotated defaults
// on first run. Lines starting with // are treated as comments and stripped
// before JSON parsing.
func Load() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return defaultConfig(), err
	}
	return loadFrom(path)
}

func loadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.DailyCapHours <= 0 {
		cfg.DailyCapHours = DefaultDailyCapHours
	}
	if cfg.RolloverCheckSeconds <= 0 {
		cfg.RolloverCheckSeconds = DefaultRolloverCheckSeconds
	}
	if cfg.BackstopSaveSeconds <= 0 {
		cfg.BackstopSaveSeconds = DefaultBackstopSaveSeconds
	}
	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
