// Package rollover freezes the outgoing calendar day into the daily log
// store when the wall-clock date advances, and periodically saves the
// in-progress day as a crash-safety backstop.
package rollover

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/marender/immertrack/internal/engine"
	"github.com/marender/immertrack/internal/model"
	"github.com/marender/immertrack/internal/timeutil"
)

// DayStore persists frozen day records and reads back existing ones, so a
// snapshot can carry forward fields the engine does not track.
type DayStore interface {
	Save(log model.DayLog) error
	Load(date string) (*model.DayLog, error)
}

// StateWriter persists the live engine state.
type StateWriter interface {
	Save(st model.EngineState) error
}

// ProjectSource supplies the current project metadata snapshotted into
// day logs.
type ProjectSource interface {
	Projects() []model.Project
}

// Coordinator drives rollover checks and backstop saves against a single
// engine. It is safe to trigger from overlapping timers: an in-flight
// guard ensures at most one rollover snapshot runs at a time.
type Coordinator struct {
	engine   *engine.Engine
	logs     DayStore
	state    StateWriter
	projects ProjectSource

	now      func() time.Time
	inFlight atomic.Bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces the wall clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New wires a coordinator to its collaborators.
func New(e *engine.Engine, logs DayStore, state StateWriter, projects ProjectSource, opts ...Option) *Coordinator {
	c := &Coordinator{
		engine:   e,
		logs:     logs,
		state:    state,
		projects: projects,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckRollover compares the clock's calendar date with the engine's
// current day. When they differ it closes any open session, writes the
// outgoing day's log, resets the engine to the new day, and persists the
// reset state. The engine is only reset once the snapshot write succeeds,
// so a failed write is retried on the next check instead of dropping the
// day. Returns true when a rollover completed.
func (c *Coordinator) CheckRollover() bool {
	if !c.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer c.inFlight.Store(false)

	today := timeutil.DateString(c.now())
	oldDate := c.engine.CurrentDate()
	if oldDate == today {
		return false
	}

	// Freeze: close the open session so its time lands on the old day.
	c.engine.Stop()
	log := BuildDayLog(oldDate, c.engine.ProjectTimes(), c.projects.Projects())
	c.mergeDescriptions(&log)

	if err := c.logs.Save(log); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save day log for %s: %v\n", oldDate, err)
		return false
	}

	c.engine.ResetDay(today)
	if err := c.state.Save(c.engine.State()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save timer state: %v\n", err)
	}
	return true
}

// BackstopSave writes a snapshot of the in-progress day without resetting
// anything. Days with nothing tracked are skipped.
func (c *Coordinator) BackstopSave() error {
	if !c.engine.HasTrackedTime() {
		return nil
	}
	return c.logs.Save(c.CurrentDayLog())
}

// CurrentDayLog assembles today's record from live engine state, carrying
// forward any per-day descriptions already stored on disk.
func (c *Coordinator) CurrentDayLog() model.DayLog {
	log := BuildDayLog(c.engine.CurrentDate(), c.engine.ProjectTimes(), c.projects.Projects())
	c.mergeDescriptions(&log)
	return log
}

// mergeDescriptions copies per-day descriptions from the stored record into
// a fresh snapshot. The engine does not track descriptions, so without this
// a save would wipe them. Read failures leave the snapshot as built.
func (c *Coordinator) mergeDescriptions(log *model.DayLog) {
	prev, err := c.logs.Load(log.Date)
	if err != nil || prev == nil {
		return
	}
	byID := make(map[string]string, len(prev.Projects))
	for _, p := range prev.Projects {
		if p.Description != "" {
			byID[p.ID] = p.Description
		}
	}
	for i := range log.Projects {
		if desc, ok := byID[log.Projects[i].ID]; ok {
			log.Projects[i].Description = desc
		}
	}
}

// BuildDayLog assembles the frozen record for one date: per-project times
// joined with a snapshot of each project's CSV-export metadata, in
// registry order. Projects no longer present in the registry are dropped.
func BuildDayLog(date string, times map[string]model.ProjectTime, projects []model.Project) model.DayLog {
	log := model.DayLog{Date: date, Projects: []model.DayProject{}}
	for _, p := range projects {
		pt, ok := times[p.ID]
		if !ok {
			continue
		}
		sessions := pt.Sessions
		if sessions == nil {
			sessions = []model.Session{}
		}
		log.Projects = append(log.Projects, model.DayProject{
			ID:                  p.ID,
			Name:                p.Name,
			Icon:                p.Icon,
			Color:               p.Color,
			TotalTime:           pt.TotalTime,
			Sessions:            sessions,
			IgnoreForCsvExport:  p.IgnoreForCsvExport,
			JobCode:             p.JobCode,
			InternalDescription: p.InternalDescription,
			Workpackage:         p.Workpackage,
			Customer:            p.Customer,
			ProjectCode:         p.ProjectCode,
			KM:                  p.KM,
		})
	}
	return log
}
