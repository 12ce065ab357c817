package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/JillVernus/screentimed/internal/settings"
	"github.com/gin-gonic/gin"
)

// SettingsHandler reads and updates the persisted configuration.
type SettingsHandler struct {
	store *settings.Store
}

// NewSettingsHandler creates the settings handler.
func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// masked keys never leave the API in cleartext
var maskedKeys = map[string]bool{
	"passcode":           true,
	"telegram_bot_token": true,
}

// maskValue is what masked keys read back as. An update echoing it is a
// round-trip of the mask, not a new value, and must never be stored.
const maskValue = "••••"

// GetSettings returns all known configuration keys. Secrets come back
// masked; date-scoped counters are filtered out.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	all, err := h.store.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	known := settings.KnownKeys()
	out := make(map[string]string, len(known))
	for k, v := range all {
		if !known[k] {
			continue
		}
		if maskedKeys[k] && v != "" {
			v = maskValue
		}
		out[k] = v
	}
	c.JSON(http.StatusOK, out)
}

// UpdateSettings applies a partial key/value update. Unknown keys are
// rejected wholesale so a typo cannot plant a dead setting.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings provided"})
		return
	}

	known := settings.KnownKeys()
	for k, v := range req {
		if !known[k] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown setting: " + k})
			return
		}
		// A masked value echoed back is the read-side mask, not input.
		if maskedKeys[k] && v == maskValue {
			continue
		}
		if msg := validateSetting(k, v); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
	}

	applied := 0
	for k, v := range req {
		if maskedKeys[k] && v == maskValue {
			continue
		}
		if err := h.store.Set(k, v); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		applied++
	}
	if applied > 0 {
		log.Printf("⚙️ Updated %d settings", applied)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": applied})
}

// validateSetting returns an error message for a bad value, empty
// string when the value is acceptable.
func validateSetting(key, value string) string {
	switch key {
	case "passcode":
		if len(value) != 4 {
			return "passcode must be exactly 4 digits"
		}
		for _, r := range value {
			if r < '0' || r > '9' {
				return "passcode must be exactly 4 digits"
			}
		}
	case "warning1_message", "warning2_message", "blocking_message",
		"telegram_bot_token", "telegram_admin_chat_id":
		// free-form
	case "pause_enabled", "telegram_enabled":
		if value != "0" && value != "1" {
			return key + " must be 0 or 1"
		}
	default:
		// everything else is a non-negative integer
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return key + " must be a non-negative integer"
		}
	}
	return ""
}
