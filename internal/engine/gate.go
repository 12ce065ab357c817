package engine

import (
	"log"

	"github.com/JillVernus/screentimed/internal/notify"
)

// The blocking gate: passcode-gated operations available while the display
// is locked. Verification is a plain equality check against the stored
// 4-digit code; a failure only flags "incorrect passcode" for the caller to
// render, with no lockout.

func (e *Engine) verifyPasscodeLocked(code string) bool {
	return code != "" && code == e.store.Passcode()
}

// Unlock dismisses the blocking screen when the passcode matches. It does
// not add time: the countdown stays wherever it is, and the persisted value
// is refreshed so a restart agrees with what the operator saw.
func (e *Engine) Unlock(passcode string) (bool, []notify.Command) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.verifyPasscodeLocked(passcode) {
		log.Printf("⚠️ Unlock refused: incorrect passcode")
		return false, nil
	}

	e.blocked = false
	e.store.SaveRemainingToday(max(e.remaining, 0))

	log.Printf("🔓 Unlocked by passcode")
	return true, []notify.Command{
		notify.HideBlocking(e.remaining),
		notify.Refresh(e.remaining, e.paused),
	}
}

// ExtendWithAuth verifies the passcode and then extends the countdown.
func (e *Engine) ExtendWithAuth(passcode string, minutes int) (bool, []notify.Command) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.verifyPasscodeLocked(passcode) {
		log.Printf("⚠️ Extend refused: incorrect passcode")
		return false, nil
	}
	return true, e.extendLocked(minutes)
}

// ShutdownWithAuth verifies the passcode and invokes the terminate-session
// effect. The effect is fatal and runs after the lock is released.
func (e *Engine) ShutdownWithAuth(passcode string) bool {
	e.mu.Lock()
	if !e.verifyPasscodeLocked(passcode) {
		e.mu.Unlock()
		log.Printf("⚠️ Shutdown refused: incorrect passcode")
		return false
	}
	fn := e.shutdown
	e.mu.Unlock()

	log.Printf("🛑 Shutdown authorized by passcode")
	if fn != nil {
		fn()
	}
	return true
}
