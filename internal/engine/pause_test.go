package engine

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JillVernus/screentimed/internal/clock"
	"github.com/JillVernus/screentimed/internal/notify"
	"github.com/JillVernus/screentimed/internal/settings"
)

// eligibleEngine returns a started engine that passes every pause rule.
func eligibleEngine(t *testing.T) (*Engine, *pauseFixture) {
	t.Helper()
	e, store, clk := newTestEngine(t)
	store.SaveSessionActiveToday(600) // min active time satisfied
	e.Start()
	return e, &pauseFixture{store: store, clk: clk}
}

type pauseFixture struct {
	store *settings.Store
	clk   *clock.Fake
}

func TestCanPauseRuleOrder(t *testing.T) {
	now := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC).Unix()

	tests := []struct {
		name      string
		setup     func(e *Engine, f *pauseFixture)
		wantCode  ReasonCode
		wantSecs  int
		checkSecs bool
	}{
		{
			name: "disabled wins over everything",
			setup: func(e *Engine, f *pauseFixture) {
				f.store.Set("pause_enabled", "0")
				f.store.SavePauseUsedToday(45 * 60)
			},
			wantCode: ReasonDisabled,
		},
		{
			name: "time too low",
			setup: func(e *Engine, f *pauseFixture) {
				e.mu.Lock()
				e.remaining = 59
				e.mu.Unlock()
			},
			wantCode: ReasonTimeTooLow,
		},
		{
			name: "budget exhausted",
			setup: func(e *Engine, f *pauseFixture) {
				f.store.SavePauseUsedToday(45 * 60)
			},
			wantCode: ReasonBudgetExhausted,
		},
		{
			name: "cooldown active",
			setup: func(e *Engine, f *pauseFixture) {
				f.store.SaveLastPauseEnd(now - 60)
			},
			wantCode:  ReasonCooldownActive,
			wantSecs:  15*60 - 60,
			checkSecs: true,
		},
		{
			name: "min active time not met",
			setup: func(e *Engine, f *pauseFixture) {
				e.mu.Lock()
				e.sessionActive = 0
				e.mu.Unlock()
			},
			wantCode:  ReasonMinActiveTime,
			wantSecs:  600,
			checkSecs: true,
		},
		{
			name: "min active time partial shortfall",
			setup: func(e *Engine, f *pauseFixture) {
				e.mu.Lock()
				e.sessionActive = 300
				e.mu.Unlock()
			},
			wantCode:  ReasonMinActiveTime,
			wantSecs:  300,
			checkSecs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, f := eligibleEngine(t)
			tt.setup(e, f)

			reason := e.CanPause()
			if reason == nil {
				t.Fatalf("expected refusal, got nil")
			}
			if reason.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", reason.Code, tt.wantCode)
			}
			if tt.checkSecs && reason.SecondsRemaining != tt.wantSecs {
				t.Fatalf("secondsRemaining = %d, want %d", reason.SecondsRemaining, tt.wantSecs)
			}
		})
	}
}

func TestCanPauseAllowed(t *testing.T) {
	e, _ := eligibleEngine(t)
	if reason := e.CanPause(); reason != nil {
		t.Fatalf("expected eligibility, got %v", reason)
	}
}

func TestPauseFreezesCountdown(t *testing.T) {
	e, _ := eligibleEngine(t)
	before := e.Remaining()

	paused, reason, cmds := e.TogglePause()
	if !paused {
		t.Fatalf("pause refused: %v", reason)
	}
	refresh, ok := findCommand(cmds, notify.KindRefresh)
	if !ok || !refresh.Paused {
		t.Fatalf("expected paused refresh, got %v", cmds)
	}

	tickN(e, 10)
	if got := e.Remaining(); got != before {
		t.Fatalf("remaining moved during pause: %d -> %d", before, got)
	}
	if got := e.Snapshot().CurrentPauseElapsed; got != 10 {
		t.Fatalf("pauseElapsed = %d, want 10", got)
	}
}

func TestResumeChargesBudgetAndLogs(t *testing.T) {
	e, f := eligibleEngine(t)
	e.TogglePause()
	tickN(e, 3)

	paused, _, _ := e.TogglePause()
	if paused {
		t.Fatalf("second toggle should resume")
	}

	if got := f.store.PauseUsedToday(); got != 3 {
		t.Fatalf("pauseUsed = %d, want 3", got)
	}
	entries := f.store.PauseLogToday()
	if len(entries) != 1 {
		t.Fatalf("pause log entries = %d, want 1", len(entries))
	}
	if want := "12:00:00:3s"; entries[0] != want {
		t.Fatalf("pause log entry = %q, want %q", entries[0], want)
	}
	if f.store.LastPauseEnd() == 0 {
		t.Fatalf("cooldown timestamp not recorded")
	}

	// The resume starts the cooldown immediately.
	reason := e.CanPause()
	if reason == nil || reason.Code != ReasonCooldownActive {
		t.Fatalf("expected cooldown after resume, got %v", reason)
	}
}

func TestCooldownExpires(t *testing.T) {
	e, f := eligibleEngine(t)
	e.TogglePause()
	e.TogglePause()

	f.clk.Advance(15 * time.Minute)
	if reason := e.CanPause(); reason != nil {
		t.Fatalf("cooldown should have expired, got %v", reason)
	}
}

func TestAutoResumeAtMaxDuration(t *testing.T) {
	e, f := eligibleEngine(t)
	f.store.Set("pause_max_duration", "1") // 60-second cap

	e.TogglePause()
	tickN(e, 59)
	if !e.Paused() {
		t.Fatalf("should still be paused at 59s")
	}

	e.Tick()
	if e.Paused() {
		t.Fatalf("should auto-resume at the 60s cap")
	}
	if got := f.store.PauseUsedToday(); got != 60 {
		t.Fatalf("pauseUsed = %d, want 60", got)
	}
}

func TestPauseCapRespectsBudgetRemainder(t *testing.T) {
	e, f := eligibleEngine(t)
	f.store.SavePauseUsedToday(45*60 - 10) // 10 seconds of budget left

	e.TogglePause()
	tickN(e, 10)
	if e.Paused() {
		t.Fatalf("pause should end when the budget remainder runs out")
	}
	if got := f.store.PauseUsedToday(); got != 45*60 {
		t.Fatalf("pauseUsed = %d, want %d", got, 45*60)
	}
}

func TestMaxPauseDurationBounds(t *testing.T) {
	e, _ := eligibleEngine(t)
	cfg := e.store.PauseConfig()

	tests := []struct {
		used int
		want int
	}{
		{0, 20 * 60},        // per-pause cap binds
		{45*60 - 30, 30},    // budget remainder binds
		{45 * 60, 0},        // nothing left
		{45*60 + 100, 0},    // overdrawn clamps to zero
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("used=%d", tt.used), func(t *testing.T) {
			e.mu.Lock()
			got := e.maxPauseDurationLocked(cfg, tt.used)
			e.mu.Unlock()
			if got != tt.want {
				t.Fatalf("cap = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPauseNeverResumesExistingPause(t *testing.T) {
	e, _ := eligibleEngine(t)

	if ok, reason, _ := e.Pause(); !ok {
		t.Fatalf("pause refused: %v", reason)
	}

	// A second pause request is a conflict, not a toggle: the active
	// pause must survive and carry no refusal reason.
	ok, reason, cmds := e.Pause()
	if ok || reason != nil || cmds != nil {
		t.Fatalf("second pause = (%v, %v, %v), want conflict", ok, reason, cmds)
	}
	if !e.Paused() {
		t.Fatalf("active pause was lost to a duplicate request")
	}

	if resumed, _ := e.Resume(); !resumed {
		t.Fatalf("resume of an active pause failed")
	}
	if resumed, _ := e.Resume(); resumed {
		t.Fatalf("resume without an active pause must be a no-op")
	}
}

func TestPauseRefusalCarriesReason(t *testing.T) {
	e, f := eligibleEngine(t)
	f.store.Set("pause_enabled", "0")

	ok, reason, _ := e.Pause()
	if ok || reason == nil || reason.Code != ReasonDisabled {
		t.Fatalf("pause = (%v, %v), want disabled refusal", ok, reason)
	}
}

func TestConcurrentTogglesStayConsistent(t *testing.T) {
	e, f := eligibleEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.TogglePause()
		}()
	}
	wg.Wait()

	// Leave the engine resumed regardless of toggle parity.
	if e.Paused() {
		e.TogglePause()
	}

	// No ticks ran, so every completed pause must have charged zero
	// seconds and produced a zero-length log entry.
	if got := f.store.PauseUsedToday(); got != 0 {
		t.Fatalf("pauseUsed = %d, want 0", got)
	}
	for _, entry := range f.store.PauseLogToday() {
		if !strings.HasSuffix(entry, ":0s") {
			t.Fatalf("unexpected pause log entry %q", entry)
		}
	}
}
