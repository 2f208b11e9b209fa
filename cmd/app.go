package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marender/immertrack/internal/config"
	"github.com/marender/immertrack/internal/engine"
	"github.com/marender/immertrack/internal/logstore"
	"github.com/marender/immertrack/internal/registry"
	"github.com/marender/immertrack/internal/rollover"
	"github.com/marender/immertrack/internal/statestore"
)

// app bundles the core collaborators every command works against.
type app struct {
	cfg    config.Config
	loc    *time.Location
	eng    *engine.Engine
	logs   *logstore.Store
	states *statestore.Store
	reg    *registry.Registry
	coord  *rollover.Coordinator
}

// openApp loads config and stores, restores the persisted timer state, and
// runs the start-up rollover check so a day that ended while the process
// was down is frozen before any command acts on today.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	reg, err := registry.Load(filepath.Join(dataDir, "projects.json"))
	if err != nil {
		return nil, err
	}

	logs := logstore.New(filepath.Join(dataDir, "time-logs"))
	states := statestore.New(filepath.Join(dataDir, "state.json"))

	eng := engine.New(engine.WithDailyCap(cfg.DailyCapMs()))
	st, found, err := states.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load timer state, starting fresh: %v\n", err)
	} else if found {
		if err := eng.Restore(st); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: discarding inconsistent timer state: %v\n", err)
		}
	}

	coord := rollover.New(eng, logs, states, reg)
	coord.CheckRollover()

	return &app{
		cfg:    cfg,
		loc:    loc,
		eng:    eng,
		logs:   logs,
		states: states,
		reg:    reg,
		coord:  coord,
	}, nil
}

// saveState persists the live engine state. Failures are reported but never
// interrupt the caller; the next save retries.
func (a *app) saveState() {
	if err := a.states.Save(a.eng.State()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save timer state: %v\n", err)
	}
}

// mustOpenApp is the common command prologue.
func mustOpenApp() *app {
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return a
}
