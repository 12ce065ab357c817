package engine

import (
	"log"
	"sync"

	"github.com/JillVernus/screentimed/internal/clock"
	"github.com/JillVernus/screentimed/internal/notify"
	"github.com/JillVernus/screentimed/internal/settings"
)

// uninitialized is the sentinel for "not yet loaded from storage". It is
// distinct from 0 (exhausted) and never escapes through Status.
const uninitialized = -1

// Engine owns the daily time-budget state machine: the tick-driven
// countdown, the two-stage warning protocol, the blocking transition, and
// the pause rules. All state lives behind one mutex; every transition
// returns the display commands it produced, and callers dispatch those
// after the lock is released.
type Engine struct {
	mu    sync.Mutex
	store *settings.Store
	clock clock.Clock

	// shutdown terminates the session when the blocking gate authorizes it.
	shutdown func()

	// Budget state
	remaining int // seconds left today; -1 = uninitialized
	blocked   bool
	today     string // date the in-memory counters belong to

	// Pause state
	paused         bool
	pauseStartedAt int64
	pauseElapsed   int // seconds accumulated in the active pause
	sessionActive  int // unpaused seconds accumulated today
}

// Status is a point-in-time snapshot for status rendering.
type Status struct {
	Date                 string `json:"date"`
	RemainingSeconds     int    `json:"remainingSeconds"`
	Blocked              bool   `json:"blocked"`
	Paused               bool   `json:"paused"`
	CurrentPauseElapsed  int    `json:"currentPauseElapsed"`
	MaxPauseDuration     int    `json:"maxPauseDuration"`
	SessionActiveSeconds int    `json:"sessionActiveSeconds"`
	PauseUsedSeconds     int    `json:"pauseUsedSeconds"`
	PauseBudgetSeconds   int    `json:"pauseBudgetSeconds"`
	PauseBudgetRemaining int    `json:"pauseBudgetRemaining"`
}

// New creates an engine bound to its settings store and clock. Call Start
// to load persisted state before ticking.
func New(store *settings.Store, clk clock.Clock) *Engine {
	return &Engine{
		store:     store,
		clock:     clk,
		remaining: uninitialized,
	}
}

// SetShutdownFunc installs the terminate-session effect used by
// ShutdownWithAuth.
func (e *Engine) SetShutdownFunc(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdown = fn
}

// Start initializes the countdown from today's persisted value, or from the
// weekday's daily limit when none is stored. If the loaded value is already
// exhausted the blocking command is replayed so a restart cannot clear the
// lock screen.
func (e *Engine) Start() []notify.Command {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.today = e.clock.Today()
	e.loadDayLocked()

	log.Printf("✅ Budget engine started: %s remaining, %s active today",
		FormatDuration(e.remaining), FormatDuration(e.sessionActive))

	var cmds []notify.Command
	if e.blocked {
		cmds = append(cmds, notify.ShowBlocking(e.store.BlockingMessage(), e.remaining))
	}
	cmds = append(cmds, notify.Refresh(e.remaining, e.paused))
	return cmds
}

// loadDayLocked reads today's counters from the store. Caller holds the lock
// and has set e.today.
func (e *Engine) loadDayLocked() {
	if v, ok := e.store.RemainingToday(); ok {
		e.remaining = v
	} else {
		e.remaining = e.store.DailyLimitMinutes(e.clock.Weekday()) * 60
	}
	e.sessionActive = e.store.SessionActiveToday()
	e.blocked = e.remaining <= 0
}

// Tick advances the state machine by one second. It is the sole driver of
// the countdown and is safe to call in any state.
func (e *Engine) Tick() []notify.Command {
	e.mu.Lock()
	defer e.mu.Unlock()

	var cmds []notify.Command

	if today := e.clock.Today(); today != e.today {
		cmds = append(cmds, e.rolloverLocked(today)...)
	}

	if e.paused {
		cmds = append(cmds, e.pauseTickLocked()...)
		cmds = append(cmds, notify.Refresh(e.remaining, e.paused))
		return cmds
	}

	if e.remaining > 0 {
		e.remaining--
		e.sessionActive++

		// Write-through every 30 seconds; a crash loses at most 29s.
		if e.remaining%30 == 0 {
			e.store.SaveRemainingToday(e.remaining)
			e.store.SaveSessionActiveToday(e.sessionActive)
		}

		// Exact-match thresholds: only decrement-by-one ticks guarantee
		// firing, which keeps a bulk extension from replaying old warnings.
		for n := 1; n <= 2; n++ {
			minutes, message := e.store.WarningConfig(n)
			if e.remaining == minutes*60 {
				cmds = append(cmds, notify.ShowWarning(message, 10, e.remaining))
			}
		}

		if e.remaining == 0 {
			e.blocked = true
			cmds = append(cmds, notify.ShowBlocking(e.store.BlockingMessage(), 0))
		}
	}

	cmds = append(cmds, notify.Refresh(e.remaining, e.paused))
	return cmds
}

// rolloverLocked re-initializes the day's counters when the date changes
// while the process keeps running. An active pause is closed out first; its
// accounting lands on the new date.
func (e *Engine) rolloverLocked(today string) []notify.Command {
	log.Printf("📅 Date rolled over %s → %s, reloading daily counters", e.today, today)

	var cmds []notify.Command
	wasBlocked := e.blocked

	e.today = today
	if e.paused {
		cmds = append(cmds, e.resumeLocked()...)
	}
	e.loadDayLocked()

	if wasBlocked && !e.blocked {
		cmds = append(cmds, notify.HideBlocking(e.remaining))
	} else if !wasBlocked && e.blocked {
		cmds = append(cmds, notify.ShowBlocking(e.store.BlockingMessage(), e.remaining))
	}
	return cmds
}

// ExtendTime adds minutes to the countdown. An uninitialized countdown is
// set to exactly minutes*60 rather than added to the sentinel. Extending
// while blocked re-transitions to Active and dismisses the blocking screen.
// Authorization, if required, is the caller's concern; the bound (if any)
// is enforced by the remote adapters.
func (e *Engine) ExtendTime(minutes int) []notify.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.extendLocked(minutes)
}

func (e *Engine) extendLocked(minutes int) []notify.Command {
	if minutes <= 0 {
		return nil
	}

	if e.remaining < 0 {
		e.remaining = minutes * 60
	} else {
		e.remaining += minutes * 60
	}
	e.store.SaveRemainingToday(e.remaining)

	var cmds []notify.Command
	if e.blocked && e.remaining > 0 {
		e.blocked = false
		cmds = append(cmds, notify.HideBlocking(e.remaining))
	}
	cmds = append(cmds, notify.Refresh(e.remaining, e.paused))

	log.Printf("✅ Time extended by %d min, remaining: %s", minutes, FormatDuration(e.remaining))
	return cmds
}

// ResetTimer sets the countdown back to today's weekday limit and persists
// it. This is an explicit operator action, not part of the tick cycle.
func (e *Engine) ResetTimer() []notify.Command {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.remaining = e.store.DailyLimitMinutes(e.clock.Weekday()) * 60
	e.store.SaveRemainingToday(e.remaining)

	log.Printf("🔄 Timer reset to %s", FormatDuration(e.remaining))
	return []notify.Command{notify.Refresh(e.remaining, e.paused)}
}

// Remaining returns the current countdown value in seconds.
func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remaining
}

// Paused reports whether the countdown is currently paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Snapshot returns a consistent view of the engine state for rendering.
func (e *Engine) Snapshot() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.store.PauseConfig()
	used := e.store.PauseUsedToday()
	budget := cfg.DailyBudgetMinutes * 60

	remaining := e.remaining
	if remaining < 0 {
		remaining = 0
	}

	return Status{
		Date:                 e.today,
		RemainingSeconds:     remaining,
		Blocked:              e.blocked,
		Paused:               e.paused,
		CurrentPauseElapsed:  e.pauseElapsed,
		MaxPauseDuration:     e.maxPauseDurationLocked(cfg, used),
		SessionActiveSeconds: e.sessionActive,
		PauseUsedSeconds:     used,
		PauseBudgetSeconds:   budget,
		PauseBudgetRemaining: max(budget-used, 0),
	}
}
