package handlers

import (
	"net/http"

	"github.com/JillVernus/screentimed/internal/engine"
	"github.com/JillVernus/screentimed/internal/notify"
	"github.com/JillVernus/screentimed/internal/settings"
	"github.com/gin-gonic/gin"
)

// TimerHandler exposes the countdown state and the command surface
// around it.
type TimerHandler struct {
	engine     *engine.Engine
	store      *settings.Store
	dispatcher *notify.Dispatcher
}

// NewTimerHandler creates the timer command handler.
func NewTimerHandler(e *engine.Engine, store *settings.Store, d *notify.Dispatcher) *TimerHandler {
	return &TimerHandler{engine: e, store: store, dispatcher: d}
}

// GetStatus returns the current day's snapshot.
func (h *TimerHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

// GetHistory returns today's pause log entries.
func (h *TimerHandler) GetHistory(c *gin.Context) {
	entries := h.store.PauseLogToday()
	if entries == nil {
		entries = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"date":    h.engine.Snapshot().Date,
		"pauses":  entries,
		"count":   len(entries),
		"usedSec": h.store.PauseUsedToday(),
	})
}

type extendRequest struct {
	Minutes  int    `json:"minutes" binding:"required"`
	Passcode string `json:"passcode"`
}

// Extend adds minutes to today's budget. The amount is capped to keep
// a mistyped value from granting a whole day.
func (h *TimerHandler) Extend(c *gin.Context) {
	var req extendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Minutes < 1 || req.Minutes > 120 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minutes must be between 1 and 120"})
		return
	}

	var cmds []notify.Command
	if req.Passcode != "" {
		ok, out := h.engine.ExtendWithAuth(req.Passcode, req.Minutes)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid passcode"})
			return
		}
		cmds = out
	} else {
		cmds = h.engine.ExtendTime(req.Minutes)
	}
	h.dispatcher.Dispatch(cmds)

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"remainingSeconds": h.engine.Remaining(),
	})
}

// Pause starts a pause if allowed, otherwise reports why not. The engine
// decides under its own lock, so a pause landing between request and
// decision is a conflict, never a surprise resume.
func (h *TimerHandler) Pause(c *gin.Context) {
	paused, reason, cmds := h.engine.Pause()
	h.dispatcher.Dispatch(cmds)

	if paused {
		c.JSON(http.StatusOK, gin.H{"success": true, "paused": true})
		return
	}
	if reason == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "already paused"})
		return
	}
	resp := gin.H{
		"success": false,
		"reason":  reason.Code,
		"message": reason.String(),
	}
	if reason.SecondsRemaining > 0 {
		resp["secondsRemaining"] = reason.SecondsRemaining
	}
	c.JSON(http.StatusUnprocessableEntity, resp)
}

// Resume ends an active pause.
func (h *TimerHandler) Resume(c *gin.Context) {
	resumed, cmds := h.engine.Resume()
	h.dispatcher.Dispatch(cmds)
	if !resumed {
		c.JSON(http.StatusConflict, gin.H{"error": "not paused"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "paused": false})
}

// Reset restores today's budget to the configured daily limit.
func (h *TimerHandler) Reset(c *gin.Context) {
	cmds := h.engine.ResetTimer()
	h.dispatcher.Dispatch(cmds)
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"remainingSeconds": h.engine.Remaining(),
	})
}

type passcodeRequest struct {
	Passcode string `json:"passcode" binding:"required"`
}

// Unlock clears the blocking screen after passcode verification.
func (h *TimerHandler) Unlock(c *gin.Context) {
	var req passcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ok, cmds := h.engine.Unlock(req.Passcode)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid passcode"})
		return
	}
	h.dispatcher.Dispatch(cmds)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Shutdown verifies the passcode and then triggers the configured
// shutdown hook.
func (h *TimerHandler) Shutdown(c *gin.Context) {
	var req passcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !h.engine.ShutdownWithAuth(req.Passcode) {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid passcode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ShowWarning pushes a warning overlay to displays on demand. Used to
// verify the display pipeline without waiting for a threshold.
func (h *TimerHandler) ShowWarning(c *gin.Context) {
	n := 1
	if c.Query("stage") == "2" {
		n = 2
	}
	_, msg := h.store.WarningConfig(n)
	h.dispatcher.Dispatch([]notify.Command{
		notify.ShowWarning(msg, 10, h.engine.Remaining()),
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ShowBlocking pushes the blocking overlay to displays on demand
// without changing the countdown state.
func (h *TimerHandler) ShowBlocking(c *gin.Context) {
	h.dispatcher.Dispatch([]notify.Command{
		notify.ShowBlocking(h.store.BlockingMessage(), h.engine.Remaining()),
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}
