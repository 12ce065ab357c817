package notify

import (
	"log"
	"sync"
)

// Kind identifies a display command.
type Kind string

const (
	KindShowWarning  Kind = "show_warning"
	KindShowBlocking Kind = "show_blocking"
	KindHideBlocking Kind = "hide_blocking"
	KindRefresh      Kind = "refresh_countdown"
)

// Command is a fire-and-forget display instruction. The engine returns
// commands from its transitions; callers dispatch them after releasing the
// engine lock. A failed delivery is not retried and never rolls back the
// state transition that produced it.
type Command struct {
	Kind             Kind   `json:"kind"`
	Message          string `json:"message,omitempty"`
	DurationSeconds  int    `json:"durationSeconds,omitempty"`
	RemainingSeconds int    `json:"remainingSeconds"`
	Paused           bool   `json:"paused,omitempty"`
}

// ShowWarning builds a warning display command.
func ShowWarning(message string, durationSeconds, remaining int) Command {
	return Command{
		Kind:             KindShowWarning,
		Message:          message,
		DurationSeconds:  durationSeconds,
		RemainingSeconds: remaining,
	}
}

// ShowBlocking builds a blocking screen command.
func ShowBlocking(message string, remaining int) Command {
	return Command{Kind: KindShowBlocking, Message: message, RemainingSeconds: remaining}
}

// HideBlocking builds a dismiss command for the blocking screen.
func HideBlocking(remaining int) Command {
	return Command{Kind: KindHideBlocking, RemainingSeconds: remaining}
}

// Refresh builds a countdown readout update.
func Refresh(remaining int, paused bool) Command {
	return Command{Kind: KindRefresh, RemainingSeconds: remaining, Paused: paused}
}

// Notifier receives display commands. Implementations must not call back
// into the engine.
type Notifier interface {
	Notify(Command)
}

// Dispatcher fans commands out to all registered notifiers, preserving the
// order the engine produced them in.
type Dispatcher struct {
	mu        sync.RWMutex
	notifiers []Notifier
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds a notifier.
func (d *Dispatcher) Register(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifiers = append(d.notifiers, n)
}

// Dispatch delivers commands to every notifier, in order.
func (d *Dispatcher) Dispatch(cmds []Command) {
	if len(cmds) == 0 {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, cmd := range cmds {
		for _, n := range d.notifiers {
			n.Notify(cmd)
		}
	}
}

// LogNotifier writes display commands to the process log. It keeps a
// headless deployment observable and doubles as the fallback when no
// display front end is connected.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(cmd Command) {
	switch cmd.Kind {
	case KindShowWarning:
		log.Printf("⏰ Warning (%ds): %s", cmd.DurationSeconds, cmd.Message)
	case KindShowBlocking:
		log.Printf("🔒 Blocking screen: %s", cmd.Message)
	case KindHideBlocking:
		log.Printf("🔓 Blocking screen dismissed (remaining: %ds)", cmd.RemainingSeconds)
	}
}
