package engine

import "fmt"

// FormatDuration renders seconds as a human-readable duration,
// e.g. "1h 30m 45s".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		return "--:--"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// FormatClock renders seconds compactly, e.g. "1:30:45" or "30:45".
func FormatClock(seconds int) string {
	if seconds < 0 {
		return "--:--"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
