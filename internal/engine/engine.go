// Package engine implements the single-active-session timer state machine:
// at most one project is being timed at any instant, elapsed time is
// committed into per-project daily totals, and a hard daily cap bounds the
// combined tracked time per calendar day.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/marender/immertrack/internal/model"
	"github.com/marender/immertrack/internal/timeutil"
)

// DefaultDailyCap is the ceiling on combined tracked time per calendar day.
const DefaultDailyCap = 12 * timeutil.HourMs

// ErrInvalidState marks a persisted engine state that violates the
// active-project/start-time pairing and therefore cannot be restored.
var ErrInvalidState = errors.New("engine state has active project and start time out of sync")

// Engine holds the live timer state for the current day. All mutations are
// serialized behind a mutex; reads never mutate, so UI polling at any rate
// is safe.
type Engine struct {
	mu sync.Mutex

	now   func() time.Time
	capMs int64

	activeProjectID string
	activeStartMs   int64 // 0 while no session is open
	projectTimes    map[string]*model.ProjectTime
	currentDate     string
	limitReached    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithDailyCap overrides the daily cap in milliseconds.
func WithDailyCap(capMs int64) Option {
	return func(e *Engine) { e.capMs = capMs }
}

// New returns an empty engine for today's date.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:          time.Now,
		capMs:        DefaultDailyCap,
		projectTimes: map[string]*model.ProjectTime{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.currentDate = timeutil.DateString(e.now())
	return e
}

// Restore replaces the engine's state with a previously persisted one.
// A state with exactly one of activeProjectId/activeStartTime set is
// refused: the engine never enters an inconsistent pairing.
func (e *Engine) Restore(st model.EngineState) error {
	if (st.ActiveProjectID == nil) != (st.ActiveStartTime == nil) {
		return ErrInvalidState
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.activeProjectID = ""
	e.activeStartMs = 0
	if st.ActiveProjectID != nil {
		e.activeProjectID = *st.ActiveProjectID
		e.activeStartMs = *st.ActiveStartTime
	}
	e.projectTimes = map[string]*model.ProjectTime{}
	for id, pt := range st.ProjectTimes {
		copied := pt
		copied.Sessions = append([]model.Session(nil), pt.Sessions...)
		e.projectTimes[id] = &copied
	}
	e.currentDate = st.CurrentDate
	if e.currentDate == "" {
		e.currentDate = timeutil.DateString(e.now())
	}
	e.limitReached = st.LimitReached
	return nil
}

// State returns a persistable snapshot of the engine.
func (e *Engine) State() model.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := model.EngineState{
		ProjectTimes: e.copyTimesLocked(),
		CurrentDate:  e.currentDate,
		LimitReached: e.limitReached,
	}
	if e.activeStartMs != 0 {
		id := e.activeProjectID
		start := e.activeStartMs
		st.ActiveProjectID = &id
		st.ActiveStartTime = &start
	}
	return st
}

// Start begins timing projectID. Any session already running, including one
// for the same project, is committed first so no time is lost or counted
// twice across the switch instant. Start reports false and leaves all state
// untouched when the daily cap has been reached.
func (e *Engine) Start(projectID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	nowMs := e.now().UnixMilli()
	if e.totalLocked(nowMs) >= e.capMs {
		e.limitReached = true
		return false
	}

	if e.activeStartMs != 0 {
		e.commitLocked(nowMs)
	}
	e.activeProjectID = projectID
	e.activeStartMs = nowMs
	return true
}

// Stop closes the active session, if any, committing its elapsed time.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeStartMs == 0 {
		return
	}
	e.commitLocked(e.now().UnixMilli())
}

// Tick enforces the daily cap while a session is running. Once the combined
// total reaches the cap the active session is auto-stopped with its
// committed duration clamped so the day's total never exceeds the cap; the
// synthesized end time is start + clamped duration, not the wall clock now.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeStartMs == 0 {
		return
	}

	nowMs := e.now().UnixMilli()
	elapsed := timeutil.ClampElapsed(nowMs, e.activeStartMs)
	others := e.committedTotalLocked()
	if others+elapsed < e.capMs {
		return
	}

	allowed := e.capMs - others
	if allowed < 0 {
		allowed = 0
	}
	if elapsed < allowed {
		allowed = elapsed
	}
	end := e.activeStartMs + allowed
	e.appendSessionLocked(e.activeProjectID, e.activeStartMs, end, allowed)
	e.activeProjectID = ""
	e.activeStartMs = 0
	e.limitReached = true
}

// ElapsedFor returns projectID's accumulated time for today, including the
// live elapsed portion when it is the active project. Unknown projects
// report zero. ElapsedFor never mutates state.
func (e *Engine) ElapsedFor(projectID string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var total int64
	if pt, ok := e.projectTimes[projectID]; ok {
		total = pt.TotalTime
	}
	if e.activeProjectID == projectID && e.activeStartMs != 0 {
		total += timeutil.ClampElapsed(e.now().UnixMilli(), e.activeStartMs)
	}
	return total
}

// TodayTotal returns the combined tracked time across all projects,
// including the live elapsed portion of the active session.
func (e *Engine) TodayTotal() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalLocked(e.now().UnixMilli())
}

// SetTotal replaces a project's total without touching its session history.
// This is the manual-correction path: the corrected total is authoritative
// from here on even though it no longer matches the session sum.
func (e *Engine) SetTotal(projectID string, totalMs int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pt, ok := e.projectTimes[projectID]
	if !ok {
		pt = &model.ProjectTime{ProjectID: projectID, Sessions: []model.Session{}}
		e.projectTimes[projectID] = pt
	}
	pt.TotalTime = totalMs
}

// Active returns the active project ID and whether a session is open.
func (e *Engine) Active() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeProjectID, e.activeStartMs != 0
}

// ActiveSince returns the epoch-millisecond start of the open session.
func (e *Engine) ActiveSince() (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeStartMs, e.activeStartMs != 0
}

// CurrentDate returns the calendar day this state belongs to.
func (e *Engine) CurrentDate() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentDate
}

// LimitReached reports whether the daily cap has been hit. The flag clears
// only on day rollover, not on stop/start.
func (e *Engine) LimitReached() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.limitReached
}

// ProjectTimes returns a copy of today's per-project records.
func (e *Engine) ProjectTimes() map[string]model.ProjectTime {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyTimesLocked()
}

// HasTrackedTime reports whether anything has been recorded today.
func (e *Engine) HasTrackedTime() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.projectTimes) > 0 || e.activeStartMs != 0
}

// ResetDay closes any open session, clears all per-project state, moves the
// engine to newDate, and resets the cap flag. It returns the outgoing day's
// records for persistence.
func (e *Engine) ResetDay(newDate string) map[string]model.ProjectTime {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeStartMs != 0 {
		e.commitLocked(e.now().UnixMilli())
	}
	old := e.copyTimesLocked()
	e.projectTimes = map[string]*model.ProjectTime{}
	e.currentDate = newDate
	e.limitReached = false
	return old
}

// commitLocked closes the open session at nowMs and folds its elapsed time
// into the active project's record.
func (e *Engine) commitLocked(nowMs int64) {
	elapsed := timeutil.ClampElapsed(nowMs, e.activeStartMs)
	end := e.activeStartMs + elapsed
	e.appendSessionLocked(e.activeProjectID, e.activeStartMs, end, elapsed)
	e.activeProjectID = ""
	e.activeStartMs = 0
}

func (e *Engine) appendSessionLocked(projectID string, startMs, endMs, duration int64) {
	pt, ok := e.projectTimes[projectID]
	if !ok {
		pt = &model.ProjectTime{ProjectID: projectID, Sessions: []model.Session{}}
		e.projectTimes[projectID] = pt
	}
	end := endMs
	pt.Sessions = append(pt.Sessions, model.Session{
		StartTime: startMs,
		EndTime:   &end,
		Duration:  duration,
	})
	pt.TotalTime += duration
}

func (e *Engine) committedTotalLocked() int64 {
	var total int64
	for _, pt := range e.projectTimes {
		total += pt.TotalTime
	}
	return total
}

func (e *Engine) totalLocked(nowMs int64) int64 {
	total := e.committedTotalLocked()
	if e.activeStartMs != 0 {
		total += timeutil.ClampElapsed(nowMs, e.activeStartMs)
	}
	return total
}

func (e *Engine) copyTimesLocked() map[string]model.ProjectTime {
	out := make(map[string]model.ProjectTime, len(e.projectTimes))
	for id, pt := range e.projectTimes {
		copied := *pt
		copied.Sessions = append([]model.Session(nil), pt.Sessions...)
		out[id] = copied
	}
	return out
}
