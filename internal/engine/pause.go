package engine

import (
	"fmt"
	"log"

	"github.com/JillVernus/screentimed/internal/notify"
	"github.com/JillVernus/screentimed/internal/settings"
)

// ReasonCode identifies why a pause request was refused.
type ReasonCode string

const (
	ReasonDisabled        ReasonCode = "disabled"
	ReasonTimeTooLow      ReasonCode = "time_too_low"
	ReasonBudgetExhausted ReasonCode = "budget_exhausted"
	ReasonCooldownActive  ReasonCode = "cooldown_active"
	ReasonMinActiveTime   ReasonCode = "min_active_time_not_met"
)

// BlockedReason explains a refused pause. It is information for the
// operator, not an error: the condition resolves only with time passing or
// configuration changing, so nothing retries it.
type BlockedReason struct {
	Code             ReasonCode `json:"code"`
	SecondsRemaining int        `json:"secondsRemaining,omitempty"`
}

// String renders the reason for display.
func (r *BlockedReason) String() string {
	switch r.Code {
	case ReasonDisabled:
		return "Pause feature is disabled"
	case ReasonTimeTooLow:
		return "Time is too low to pause"
	case ReasonBudgetExhausted:
		return "Daily pause budget exhausted"
	case ReasonCooldownActive:
		return fmt.Sprintf("Cooldown active (%d seconds remaining)", r.SecondsRemaining)
	case ReasonMinActiveTime:
		return fmt.Sprintf("Need %d more seconds of active time", r.SecondsRemaining)
	}
	return string(r.Code)
}

// CanPause evaluates pause eligibility. A nil result means pausing is
// allowed; otherwise the first failing rule is returned. Already being
// paused is trivially eligible (unpausing is always permitted).
func (e *Engine) CanPause() *BlockedReason {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canPauseLocked()
}

func (e *Engine) canPauseLocked() *BlockedReason {
	if e.paused {
		return nil
	}

	cfg := e.store.PauseConfig()
	if !cfg.Enabled {
		return &BlockedReason{Code: ReasonDisabled}
	}

	if e.remaining < 60 {
		return &BlockedReason{Code: ReasonTimeTooLow}
	}

	used := e.store.PauseUsedToday()
	if used >= cfg.DailyBudgetMinutes*60 {
		return &BlockedReason{Code: ReasonBudgetExhausted}
	}

	lastEnd := e.store.LastPauseEnd()
	now := e.clock.Now().Unix()
	cooldown := int64(cfg.CooldownMinutes) * 60
	if lastEnd > 0 && now-lastEnd < cooldown {
		return &BlockedReason{
			Code:             ReasonCooldownActive,
			SecondsRemaining: int(cooldown - (now - lastEnd)),
		}
	}

	if minActive := cfg.MinActiveTimeMinutes * 60; e.sessionActive < minActive {
		return &BlockedReason{
			Code:             ReasonMinActiveTime,
			SecondsRemaining: minActive - e.sessionActive,
		}
	}

	return nil
}

// TogglePause pauses or resumes the countdown. It returns the new paused
// state, the refusal reason when pausing was not allowed, and the display
// commands produced by the transition.
func (e *Engine) TogglePause() (bool, *BlockedReason, []notify.Command) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return false, nil, e.resumeLocked()
	}

	if reason := e.canPauseLocked(); reason != nil {
		return false, reason, nil
	}
	return true, nil, e.pauseLocked()
}

// Pause starts a pause only when none is active. The first return reports
// whether the state changed; an already-active pause is left untouched with
// a nil reason so adapters can distinguish "conflict" from "refused".
func (e *Engine) Pause() (bool, *BlockedReason, []notify.Command) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return false, nil, nil
	}
	if reason := e.canPauseLocked(); reason != nil {
		return false, reason, nil
	}
	return true, nil, e.pauseLocked()
}

// Resume ends the active pause. The bool reports whether there was one.
func (e *Engine) Resume() (bool, []notify.Command) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.paused {
		return false, nil
	}
	return true, e.resumeLocked()
}

// pauseLocked enters the paused state. Nothing is persisted on entry; the
// accounting happens on resume.
func (e *Engine) pauseLocked() []notify.Command {
	e.pauseStartedAt = e.clock.Now().Unix()
	e.pauseElapsed = 0
	e.paused = true

	log.Printf("⏸ Countdown paused")
	return []notify.Command{notify.Refresh(e.remaining, true)}
}

// resumeLocked ends the active pause, explicit or automatic: the elapsed
// seconds are charged against today's pause budget, the pause is logged,
// and the cooldown clock starts.
func (e *Engine) resumeLocked() []notify.Command {
	elapsed := e.pauseElapsed

	e.store.SavePauseUsedToday(e.store.PauseUsedToday() + elapsed)
	e.store.AppendPauseLog(elapsed)
	e.store.SaveLastPauseEnd(e.clock.Now().Unix())

	e.paused = false
	e.pauseStartedAt = 0
	e.pauseElapsed = 0

	log.Printf("▶️ Countdown resumed after %s paused", FormatDuration(elapsed))
	return []notify.Command{notify.Refresh(e.remaining, false)}
}

// pauseTickLocked advances the active pause by one second; the countdown
// itself does not move. When the cap is reached the pause resumes
// automatically with the same effects as an explicit resume.
func (e *Engine) pauseTickLocked() []notify.Command {
	cfg := e.store.PauseConfig()
	used := e.store.PauseUsedToday()

	e.pauseElapsed++
	if e.pauseElapsed >= e.maxPauseDurationLocked(cfg, used) {
		return e.resumeLocked()
	}
	return nil
}

// maxPauseDurationLocked caps a single pause by both the per-pause maximum
// and what is left of today's pause budget.
func (e *Engine) maxPauseDurationLocked(cfg settings.PauseConfig, used int) int {
	budgetLeft := max(cfg.DailyBudgetMinutes*60-used, 0)
	return min(cfg.MaxDurationMinutes*60, budgetLeft)
}
