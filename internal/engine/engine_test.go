package engine_test

import (
	"testing"
	"time"

	"github.com/marender/immertrack/internal/engine"
	"github.com/marender/immertrack/internal/model"
)

// fakeClock is a manually advanced wall clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newEngine(c *fakeClock, opts ...engine.Option) *engine.Engine {
	opts = append([]engine.Option{engine.WithClock(c.Now)}, opts...)
	return engine.New(opts...)
}

func TestStartStopCommitsElapsed(t *testing.T) {
	clock := newFakeClock()
	e := newEngine(clock)

	if !e.Start("a") {
		t.Fatal("Start refused on fresh engine")
	}
	clock.Advance(25 * time.Minute)
	e.Stop()

	want := int64(25 * 60 * 1000)
	if got := e.ElapsedFor("a"); got != want {
		t.Errorf("ElapsedFor(a) = %d, want %d", got, want)
	}

	times := e.ProjectTimes()
	pt := times["a"]
	if len(pt.Sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(pt.Sessions))
	}
	s := pt.Sessions[0]
	if s.EndTime == nil || *s.EndTime-s.StartTime != s.Duration {
		t.Errorf("session bounds inconsistent: %+v", s)
	}
	if pt.TotalTime != want {
		t.Errorf("TotalTime = %d, want %d", pt.TotalTime, want)
	}
}

func TestSwitchDoesNotDoubleCount(t *testing.T) {
	clock := newFakeClock()
	e := newEngine(clock)

	e.Start("a")
	clock.Advance(10 * time.Minute)
	e.Start("b") // switch commits a first

	if got, want := e.ElapsedFor("a"), int64(10*60*1000); got != want {
		t.Errorf("ElapsedFor(a) = %d, want %d", got, want)
	}
	if got := e.ElapsedFor("b"); got != 0 {
		t.Errorf("ElapsedFor(b) at switch instant = %d, want 0", got)
	}

	clock.Advance(5 * time.Minute)
	if got, want := e.ElapsedFor("b"), int64(5*60*1000); got != want {
		t.Errorf("ElapsedFor(b) = %d, want %d", got, want)
	}
	if got, want := e.TodayTotal(), int64(15*60*1000); got != want {
		t.Errorf("TodayTotal = %d, want %d", got, want)
	}
}

func TestSingleActiveInvariant(t *testing.T) {
	clock := newFakeClock()
	e := newEngine(clock)

	e.Start("a")
	e.Start("b")

	id, active := e.Active()
	if !active || id != "b" {
		t.Fatalf("Active = %q/%v, want b/true", id, active)
	}

	st := e.State()
	if (st.ActiveProjectID == nil) != (st.ActiveStartTime == nil) {
		t.Error("state has exactly one of activeProjectId/activeStartTime set")
	}

	e.Stop()
	st = e.State()
	if st.ActiveProjectID != nil || st.ActiveStartTime != nil {
		t.Error("active pointers not cleared after Stop")
	}
}

func TestStopWithoutActiveIsNoop(t *testing.T) {
	e := newEngine(newFakeClock())
	e.Stop()
	if got := e.TodayTotal(); got != 0 {
		t.Errorf("TodayTotal = %d, want 0", got)
	}
}

func TestElapsedForIsReadOnly(t *testing.T) {
	clock := newFakeClock()
	e := newEngine(clock)

	e.Start("a")
	clock.Advance(time.Minute)

	first := e.ElapsedFor("a")
	for i := 0; i < 10; i++ {
		if got := e.ElapsedFor("a"); got != first {
			t.Fatalf("ElapsedFor changed between polls: %d then %d", first, got)
		}
	}
	if got := e.ElapsedFor("unknown"); got != 0 {
		t.Errorf("ElapsedFor(unknown) = %d, want 0", got)
	}
}

func TestCapRefusesStart(t *testing.T) {
	clock := newFakeClock()
	capMs := int64(2 * 60 * 60 * 1000)
	e := newEngine(clock, engine.WithDailyCap(capMs))

	e.Start("a")
	clock.Advance(2 * time.Hour)
	e.Stop()

	if e.Start("b") {
		t.Error("Start succeeded at cap")
	}
	if !e.LimitReached() {
		t.Error("LimitReached = false after refused start")
	}
	if _, active := e.Active(); active {
		t.Error("refused start left a session open")
	}
}

func TestTickClampsAtCap(t *testing.T) {
	clock := newFakeClock()
	capMs := int64(60 * 60 * 1000) // 1h
	e := newEngine(clock, engine.WithDailyCap(capMs))

	e.Start("a")
	clock.Advance(40 * time.Minute)
	e.Stop()

	startOfB := clock.Now().UnixMilli()
	e.Start("b")
	clock.Advance(45 * time.Minute) // overshoots the cap by 25m
	e.Tick()

	if got := e.TodayTotal(); got != capMs {
		t.Errorf("TodayTotal = %d, want cap %d", got, capMs)
	}
	if _, active := e.Active(); active {
		t.Error("session still active after cap tick")
	}
	if !e.LimitReached() {
		t.Error("LimitReached = false after cap tick")
	}

	// The synthesized end time is start + clamped duration, not now.
	pt := e.ProjectTimes()["b"]
	if len(pt.Sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(pt.Sessions))
	}
	s := pt.Sessions[0]
	wantDur := int64(20 * 60 * 1000)
	if s.Duration != wantDur {
		t.Errorf("clamped duration = %d, want %d", s.Duration, wantDur)
	}
	if s.EndTime == nil || *s.EndTime != startOfB+wantDur {
		t.Errorf("clamped end = %v, want %d", s.EndTime, startOfB+wantDur)
	}
}

func TestTickBelowCapIsNoop(t *testing.T) {
	clock := newFakeClock()
	e := newEngine(clock)

	e.Start("a")
	clock.Advance(time.Minute)
	e.Tick()

	if _, active := e.Active(); !active {
		t.Error("Tick below cap stopped the session")
	}
	if e.LimitReached() {
		t.Error("LimitReached set below cap")
	}
}

func TestLimitFlagSurvivesStopStart(t *testing.T) {
	clock := newFakeClock()
	capMs := int64(30 * 60 * 1000)
	e := newEngine(clock, engine.WithDailyCap(capMs))

	e.Start("a")
	clock.Advance(time.Hour)
	e.Tick()

	e.Stop()
	e.Start("a")
	if !e.LimitReached() {
		t.Error("LimitReached cleared without a day rollover")
	}

	e.ResetDay("2026-02-28")
	if e.LimitReached() {
		t.Error("LimitReached not cleared by ResetDay")
	}
}

func TestSetTotalBypassesSessions(t *testing.T) {
	clock := newFakeClock()
	e := newEngine(clock)

	e.Start("a")
	clock.Advance(10 * time.Minute)
	e.Stop()

	corrected := int64(90 * 60 * 1000)
	e.SetTotal("a", corrected)

	pt := e.ProjectTimes()["a"]
	if pt.TotalTime != corrected {
		t.Errorf("TotalTime = %d, want %d", pt.TotalTime, corrected)
	}
	// Session history deliberately untouched; the corrected total is
	// authoritative over the session-derived sum.
	if len(pt.Sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(pt.Sessions))
	}
	if pt.Sessions[0].Duration == corrected {
		t.Error("session duration rewritten by SetTotal")
	}
}

func TestSetTotalCreatesMissingProject(t *testing.T) {
	e := newEngine(newFakeClock())
	e.SetTotal("new", 60_000)
	if got := e.ElapsedFor("new"); got != 60_000 {
		t.Errorf("ElapsedFor(new) = %d, want 60000", got)
	}
}

func TestResetDayClosesActiveSession(t *testing.T) {
	clock := newFakeClock()
	e := newEngine(clock)

	e.Start("a")
	clock.Advance(30 * time.Minute)

	old := e.ResetDay("2026-02-28")
	if got, want := old["a"].TotalTime, int64(30*60*1000); got != want {
		t.Errorf("frozen total = %d, want %d", got, want)
	}
	if old["a"].Sessions[0].EndTime == nil {
		t.Error("frozen session left open")
	}

	if e.TodayTotal() != 0 {
		t.Error("engine not empty after ResetDay")
	}
	if _, active := e.Active(); active {
		t.Error("session still active after ResetDay")
	}
	if e.CurrentDate() != "2026-02-28" {
		t.Errorf("CurrentDate = %q, want 2026-02-28", e.CurrentDate())
	}
}

func TestBackwardsClockClampsToZero(t *testing.T) {
	clock := newFakeClock()
	e := newEngine(clock)

	e.Start("a")
	clock.Advance(-10 * time.Minute) // clock stepped backwards
	if got := e.ElapsedFor("a"); got != 0 {
		t.Errorf("ElapsedFor with backwards clock = %d, want 0", got)
	}
	e.Stop()
	if got := e.TodayTotal(); got != 0 {
		t.Errorf("TodayTotal after backwards stop = %d, want 0", got)
	}
}

func TestRestoreRejectsBrokenPairing(t *testing.T) {
	id := "a"
	st := model.EngineState{
		ActiveProjectID: &id,
		ActiveStartTime: nil,
		CurrentDate:     "2026-02-27",
	}
	e := newEngine(newFakeClock())
	if err := e.Restore(st); err == nil {
		t.Fatal("Restore accepted state with broken pairing")
	}
}

func TestStateRoundTrip(t *testing.T) {
	clock := newFakeClock()
	e := newEngine(clock)

	e.Start("a")
	clock.Advance(10 * time.Minute)
	e.Start("b")
	clock.Advance(5 * time.Minute)

	st := e.State()

	restored := newEngine(clock)
	if err := restored.Restore(st); err != nil {
		t.Fatal(err)
	}

	if got, want := restored.ElapsedFor("a"), e.ElapsedFor("a"); got != want {
		t.Errorf("restored ElapsedFor(a) = %d, want %d", got, want)
	}
	id, active := restored.Active()
	if !active || id != "b" {
		t.Errorf("restored Active = %q/%v, want b/true", id, active)
	}
	if restored.CurrentDate() != e.CurrentDate() {
		t.Errorf("restored CurrentDate = %q, want %q", restored.CurrentDate(), e.CurrentDate())
	}
}
