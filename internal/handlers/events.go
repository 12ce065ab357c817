package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/JillVernus/screentimed/internal/engine"
	"github.com/JillVernus/screentimed/internal/notify"
	"github.com/JillVernus/screentimed/internal/settings"
	"github.com/gin-gonic/gin"
)

// EventStream serves display commands over SSE. The display client
// reconnects on drop; the current snapshot is replayed first so a fresh
// client never starts from a blank overlay.
func EventStream(b *notify.Broadcaster, e *engine.Engine, store *settings.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		flusher, ok := c.Writer.(http.Flusher)
		if !ok {
			log.Printf("⚠️ ResponseWriter does not support flushing")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
			return
		}

		clientID, ch := b.Subscribe()
		if ch == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many display clients"})
			return
		}
		defer b.Unsubscribe(clientID)

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(200)

		// replay current state before live events
		snap := e.Snapshot()
		if err := writeEvent(c, notify.Refresh(snap.RemainingSeconds, snap.Paused)); err != nil {
			return
		}
		if snap.Blocked {
			if err := writeEvent(c, notify.ShowBlocking(store.BlockingMessage(), snap.RemainingSeconds)); err != nil {
				return
			}
		}
		flusher.Flush()

		for {
			select {
			case cmd, open := <-ch:
				if !open {
					return
				}
				// A write error means the client is gone; stop
				// instead of writing until the context fires.
				if err := writeEvent(c, cmd); err != nil {
					return
				}
				flusher.Flush()
			case <-c.Request.Context().Done():
				return
			}
		}
	}
}

func writeEvent(c *gin.Context, cmd notify.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	if _, err := c.Writer.WriteString("event: " + string(cmd.Kind) + "\n"); err != nil {
		return err
	}
	_, err = c.Writer.WriteString("data: " + string(data) + "\n\n")
	return err
}
