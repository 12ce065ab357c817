package settings

// WeekdayKeys are the settings keys for daily limits, 0 = Monday ... 6 = Sunday.
var WeekdayKeys = [7]string{
	"limit_monday", "limit_tuesday", "limit_wednesday", "limit_thursday",
	"limit_friday", "limit_saturday", "limit_sunday",
}

// WeekdayNames mirrors WeekdayKeys for display.
var WeekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// defaults are seeded on first run; any key absent from the store falls back
// to its value here rather than failing.
var defaults = []struct {
	Key   string
	Value string
}{
	{"passcode", "0000"},
	// Daily limits in minutes
	{"limit_monday", "120"},
	{"limit_tuesday", "120"},
	{"limit_wednesday", "120"},
	{"limit_thursday", "120"},
	{"limit_friday", "180"},
	{"limit_saturday", "240"},
	{"limit_sunday", "240"},
	// First warning (minutes before limit)
	{"warning1_minutes", "10"},
	{"warning1_message", "10 minutes remaining!"},
	// Second warning (minutes before limit)
	{"warning2_minutes", "5"},
	{"warning2_message", "5 minutes remaining!"},
	// Blocking message
	{"blocking_message", "Your screen time limit has been reached."},
	// Pause mode settings
	{"pause_enabled", "1"},          // 1 = enabled, 0 = disabled
	{"pause_daily_budget", "45"},    // Total pause minutes per day
	{"pause_max_duration", "20"},    // Max minutes per single pause
	{"pause_cooldown", "15"},        // Minutes between pauses
	{"pause_min_active_time", "10"}, // Min minutes before first pause allowed
	// Telegram remote control
	{"telegram_enabled", "0"},
	{"telegram_bot_token", ""},
	{"telegram_admin_chat_id", ""},
}

// KnownKeys returns the set of fixed (non date-scoped) settings keys. Used by
// the HTTP settings handler and the override watcher to validate input.
func KnownKeys() map[string]bool {
	keys := make(map[string]bool, len(defaults))
	for _, d := range defaults {
		keys[d.Key] = true
	}
	return keys
}
