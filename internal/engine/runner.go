package engine

import (
	"context"
	"log"
	"time"

	"github.com/JillVernus/screentimed/internal/notify"
)

// Runner drives the engine with a periodic tick and hands the resulting
// display commands to the dispatcher. The ticker goroutine is the only
// periodic mutator; administrative calls from the HTTP API and the Telegram
// bot serialize against it on the engine lock.
type Runner struct {
	engine     *Engine
	dispatcher *notify.Dispatcher
	interval   time.Duration
}

// NewRunner creates a runner with a 1-second tick.
func NewRunner(e *Engine, d *notify.Dispatcher) *Runner {
	return &Runner{
		engine:     e,
		dispatcher: d,
		interval:   time.Second,
	}
}

// Run ticks until the context is cancelled. The engine must have been
// started before the first tick.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("⏹ Tick loop stopped")
			return
		case <-ticker.C:
			r.dispatcher.Dispatch(r.engine.Tick())
		}
	}
}
