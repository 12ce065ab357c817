package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/JillVernus/screentimed/internal/clock"
	"github.com/JillVernus/screentimed/internal/database"
	"github.com/JillVernus/screentimed/internal/notify"
	"github.com/JillVernus/screentimed/internal/settings"
)

// newTestEngine builds an engine on a throwaway SQLite store with a fake
// clock pinned to Wednesday 2026-01-07 noon (daily limit 120 minutes).
func newTestEngine(t *testing.T) (*Engine, *settings.Store, *clock.Fake) {
	t.Helper()

	db, err := database.Open(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clk := clock.NewFake(time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC))
	store, err := settings.NewStore(db, clk)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return New(store, clk), store, clk
}

func findCommand(cmds []notify.Command, kind notify.Kind) (notify.Command, bool) {
	for _, c := range cmds {
		if c.Kind == kind {
			return c, true
		}
	}
	return notify.Command{}, false
}

func tickN(e *Engine, n int) []notify.Command {
	var last []notify.Command
	for i := 0; i < n; i++ {
		last = e.Tick()
	}
	return last
}

func TestStartUsesWeekdayLimit(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.Start()
	if got := e.Remaining(); got != 120*60 {
		t.Fatalf("remaining = %d, want %d", got, 120*60)
	}
}

func TestStartPrefersPersistedValue(t *testing.T) {
	e, store, _ := newTestEngine(t)
	store.SaveRemainingToday(900)

	e.Start()
	if got := e.Remaining(); got != 900 {
		t.Fatalf("remaining = %d, want 900", got)
	}
}

func TestStartReplaysBlockingScreen(t *testing.T) {
	e, store, _ := newTestEngine(t)
	store.SaveRemainingToday(0)

	cmds := e.Start()
	if _, ok := findCommand(cmds, notify.KindShowBlocking); !ok {
		t.Fatalf("expected show_blocking on startup with exhausted budget, got %v", cmds)
	}
	if !e.Snapshot().Blocked {
		t.Fatalf("engine should be blocked")
	}
}

func TestTickDecrementsAndCountsActive(t *testing.T) {
	e, store, _ := newTestEngine(t)
	store.SaveRemainingToday(100)
	e.Start()

	tickN(e, 10)

	if got := e.Remaining(); got != 90 {
		t.Fatalf("remaining = %d, want 90", got)
	}
	if got := e.Snapshot().SessionActiveSeconds; got != 10 {
		t.Fatalf("sessionActive = %d, want 10", got)
	}
}

func TestWarningFiresAtExactThreshold(t *testing.T) {
	e, store, _ := newTestEngine(t)
	store.SaveRemainingToday(601)
	e.Start()

	cmds := e.Tick() // 601 -> 600, first warning threshold
	warn, ok := findCommand(cmds, notify.KindShowWarning)
	if !ok {
		t.Fatalf("expected warning at 600s, got %v", cmds)
	}
	if warn.Message != "10 minutes remaining!" {
		t.Fatalf("warning message = %q", warn.Message)
	}
	if warn.DurationSeconds != 10 {
		t.Fatalf("warning duration = %d, want 10", warn.DurationSeconds)
	}

	// No warning on the next tick
	cmds = e.Tick()
	if _, ok := findCommand(cmds, notify.KindShowWarning); ok {
		t.Fatalf("warning must not repeat at 599s")
	}
}

func TestSecondWarningFires(t *testing.T) {
	e, store, _ := newTestEngine(t)
	store.SaveRemainingToday(301)
	e.Start()

	cmds := e.Tick() // 301 -> 300, second warning threshold
	warn, ok := findCommand(cmds, notify.KindShowWarning)
	if !ok {
		t.Fatalf("expected warning at 300s")
	}
	if warn.Message != "5 minutes remaining!" {
		t.Fatalf("warning message = %q", warn.Message)
	}
}

func TestWarningRefiresAfterExtension(t *testing.T) {
	e, store, _ := newTestEngine(t)
	store.SaveRemainingToday(601)
	e.Start()

	if cmds := e.Tick(); len(cmds) == 0 {
		t.Fatalf("expected first warning")
	}

	// Extend past the threshold and burn back down to it.
	e.ExtendTime(1)
	cmds := tickN(e, 60) // 660 -> 600
	if _, ok := findCommand(cmds, notify.KindShowWarning); !ok {
		t.Fatalf("warning should fire again when the countdown re-crosses 600s")
	}
}

func TestBlocksAtZero(t *testing.T) {
	e, store, _ := newTestEngine(t)
	store.SaveRemainingToday(2)
	e.Start()

	e.Tick() // 2 -> 1
	cmds := e.Tick()
	block, ok := findCommand(cmds, notify.KindShowBlocking)
	if !ok {
		t.Fatalf("expected show_blocking at zero, got %v", cmds)
	}
	if block.RemainingSeconds != 0 {
		t.Fatalf("blocking remaining = %d, want 0", block.RemainingSeconds)
	}

	// Ticks past zero are inert: no repeat blocking, no negative countdown.
	cmds = tickN(e, 5)
	if _, ok := findCommand(cmds, notify.KindShowBlocking); ok {
		t.Fatalf("blocking must not repeat while already blocked")
	}
	if got := e.Remaining(); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
}

func TestExtendWhileBlockedUnblocks(t *testing.T) {
	e, store, _ := newTestEngine(t)
	store.SaveRemainingToday(1)
	e.Start()
	e.Tick()

	cmds := e.ExtendTime(5)
	if _, ok := findCommand(cmds, notify.KindHideBlocking); !ok {
		t.Fatalf("expected hide_blocking after extension, got %v", cmds)
	}
	if e.Snapshot().Blocked {
		t.Fatalf("engine should not be blocked after extension")
	}
	if got := e.Remaining(); got != 300 {
		t.Fatalf("remaining = %d, want 300", got)
	}
}

func TestExtendUninitializedSetsExactValue(t *testing.T) {
	e, _, _ := newTestEngine(t)

	// No Start: the countdown is still the sentinel.
	e.ExtendTime(2)
	if got := e.Remaining(); got != 120 {
		t.Fatalf("remaining = %d, want 120", got)
	}
}

func TestExtendNonPositiveIsNoOp(t *testing.T) {
	e, store, _ := newTestEngine(t)
	store.SaveRemainingToday(500)
	e.Start()

	if cmds := e.ExtendTime(0); cmds != nil {
		t.Fatalf("extend(0) produced commands: %v", cmds)
	}
	if cmds := e.ExtendTime(-5); cmds != nil {
		t.Fatalf("extend(-5) produced commands: %v", cmds)
	}
	if got := e.Remaining(); got != 500 {
		t.Fatalf("remaining = %d, want 500", got)
	}
}

func TestPersistsEveryThirtySeconds(t *testing.T) {
	e, store, _ := newTestEngine(t)
	store.SaveRemainingToday(31)
	e.Start()

	e.Tick() // 31 -> 30, multiple of 30 -> persisted
	if v, ok := store.RemainingToday(); !ok || v != 30 {
		t.Fatalf("persisted remaining = %d (ok=%v), want 30", v, ok)
	}
}

func TestRestartResumesFromPersistedState(t *testing.T) {
	e, store, clk := newTestEngine(t)
	store.SaveRemainingToday(90)
	e.Start()
	tickN(e, 60) // 90 -> 30, persisted at 60 and 30

	e2 := New(store, clk)
	e2.Start()
	if got := e2.Remaining(); got != 30 {
		t.Fatalf("remaining after restart = %d, want 30", got)
	}
}

func TestResetTimerRestoresDailyLimit(t *testing.T) {
	e, store, _ := newTestEngine(t)
	store.SaveRemainingToday(17)
	e.Start()

	e.ResetTimer()
	if got := e.Remaining(); got != 120*60 {
		t.Fatalf("remaining = %d, want %d", got, 120*60)
	}

	// Resetting again lands on the same value.
	e.ResetTimer()
	if got := e.Remaining(); got != 120*60 {
		t.Fatalf("remaining after second reset = %d, want %d", got, 120*60)
	}
	if v, _ := store.RemainingToday(); v != 120*60 {
		t.Fatalf("persisted remaining = %d, want %d", v, 120*60)
	}
}

func TestDateRolloverReloadsCounters(t *testing.T) {
	e, store, clk := newTestEngine(t)
	store.SaveRemainingToday(0)
	e.Start()
	if !e.Snapshot().Blocked {
		t.Fatalf("precondition: should start blocked")
	}

	clk.Advance(24 * time.Hour) // Thursday, fresh 120-minute budget
	cmds := e.Tick()

	if _, ok := findCommand(cmds, notify.KindHideBlocking); !ok {
		t.Fatalf("expected hide_blocking after rollover, got %v", cmds)
	}
	snap := e.Snapshot()
	if snap.Blocked {
		t.Fatalf("should not be blocked on the new day")
	}
	// The rollover tick also counts down one second of the new budget.
	if got := e.Remaining(); got != 120*60-1 {
		t.Fatalf("remaining = %d, want %d", got, 120*60-1)
	}
}

func TestRolloverClosesActivePause(t *testing.T) {
	e, store, clk := newTestEngine(t)
	store.SaveSessionActiveToday(600)
	e.Start()

	if paused, reason, _ := e.TogglePause(); !paused {
		t.Fatalf("pause refused: %v", reason)
	}
	tickN(e, 5)

	clk.Advance(24 * time.Hour)
	e.Tick()

	if e.Paused() {
		t.Fatalf("pause must not survive a date rollover")
	}
}

func TestSnapshotClampsUninitialized(t *testing.T) {
	e, _, _ := newTestEngine(t)

	if got := e.Snapshot().RemainingSeconds; got != 0 {
		t.Fatalf("snapshot remaining = %d, want 0", got)
	}
}
