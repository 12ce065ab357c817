package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JillVernus/screentimed/internal/engine"
)

// dispatchCommand runs an authorized command and renders the reply.
// Returns "" for commands it does not recognize.
func (b *Bot) dispatchCommand(command, arg string) string {
	switch command {
	case "/status":
		return b.cmdStatus()
	case "/time":
		return b.cmdTime()
	case "/extend":
		return b.cmdExtend(arg)
	case "/pause":
		return b.cmdPause()
	case "/resume":
		return b.cmdResume()
	case "/history":
		return b.cmdHistory()
	case "/help":
		return helpText
	default:
		return ""
	}
}

const helpText = `Commands:
/status - full status for today
/time - remaining time
/extend <minutes> - add 1-120 minutes
/pause - pause the countdown
/resume - resume the countdown
/history - today's pauses
/chatid - show this chat's id`

func (b *Bot) cmdStatus() string {
	s := b.engine.Snapshot()

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Status for %s\n", s.Date)
	fmt.Fprintf(&sb, "Remaining: %s\n", engine.FormatDuration(s.RemainingSeconds))
	fmt.Fprintf(&sb, "Active today: %s\n", engine.FormatDuration(s.SessionActiveSeconds))
	if s.Blocked {
		sb.WriteString("State: 🔒 blocked\n")
	} else if s.Paused {
		fmt.Fprintf(&sb, "State: ⏸ paused (%s elapsed)\n", engine.FormatDuration(s.CurrentPauseElapsed))
	} else {
		sb.WriteString("State: ▶️ running\n")
	}
	fmt.Fprintf(&sb, "Pause budget left: %s", engine.FormatDuration(s.PauseBudgetRemaining))
	return sb.String()
}

func (b *Bot) cmdTime() string {
	return fmt.Sprintf("⏳ %s remaining", engine.FormatDuration(b.engine.Remaining()))
}

func (b *Bot) cmdExtend(arg string) string {
	minutes, err := strconv.Atoi(arg)
	if err != nil {
		return "Usage: /extend <minutes> (1-120)"
	}
	if minutes < 1 || minutes > 120 {
		return "Minutes must be between 1 and 120."
	}
	cmds := b.engine.ExtendTime(minutes)
	b.dispatcher.Dispatch(cmds)
	return fmt.Sprintf("✅ Extended by %d minutes. %s remaining.",
		minutes, engine.FormatDuration(b.engine.Remaining()))
}

func (b *Bot) cmdPause() string {
	paused, reason, cmds := b.engine.Pause()
	b.dispatcher.Dispatch(cmds)
	if paused {
		return "⏸ Paused."
	}
	if reason == nil {
		return "Already paused."
	}
	return formatPauseReason(reason)
}

func (b *Bot) cmdResume() string {
	resumed, cmds := b.engine.Resume()
	b.dispatcher.Dispatch(cmds)
	if !resumed {
		return "Not paused."
	}
	return "▶️ Resumed."
}

func (b *Bot) cmdHistory() string {
	entries := b.store.PauseLogToday()
	if len(entries) == 0 {
		return "No pauses today."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "⏸ %d pause(s) today:\n", len(entries))
	for _, e := range entries {
		sb.WriteString(e)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Total: %s", engine.FormatDuration(b.store.PauseUsedToday()))
	return sb.String()
}

func formatPauseReason(r *engine.BlockedReason) string {
	if r == nil {
		return "Pause not available."
	}
	return "🚫 " + r.String()
}
