package notify

import (
	"testing"
)

type recordingNotifier struct {
	received []Command
}

func (r *recordingNotifier) Notify(cmd Command) {
	r.received = append(r.received, cmd)
}

func TestDispatcherPreservesOrder(t *testing.T) {
	d := NewDispatcher()
	a := &recordingNotifier{}
	b := &recordingNotifier{}
	d.Register(a)
	d.Register(b)

	cmds := []Command{
		ShowWarning("5 minutes remaining!", 10, 300),
		Refresh(300, false),
	}
	d.Dispatch(cmds)

	for name, n := range map[string]*recordingNotifier{"a": a, "b": b} {
		if len(n.received) != 2 {
			t.Fatalf("notifier %s received %d commands, want 2", name, len(n.received))
		}
		if n.received[0].Kind != KindShowWarning || n.received[1].Kind != KindRefresh {
			t.Fatalf("notifier %s got out-of-order commands: %v", name, n.received)
		}
	}
}

func TestDispatcherEmptyBatch(t *testing.T) {
	d := NewDispatcher()
	n := &recordingNotifier{}
	d.Register(n)

	d.Dispatch(nil)
	d.Dispatch([]Command{})
	if len(n.received) != 0 {
		t.Fatalf("empty batch delivered commands: %v", n.received)
	}
}

func TestCommandConstructors(t *testing.T) {
	warn := ShowWarning("msg", 10, 600)
	if warn.Kind != KindShowWarning || warn.Message != "msg" ||
		warn.DurationSeconds != 10 || warn.RemainingSeconds != 600 {
		t.Fatalf("unexpected warning command: %+v", warn)
	}

	block := ShowBlocking("locked", 0)
	if block.Kind != KindShowBlocking || block.RemainingSeconds != 0 {
		t.Fatalf("unexpected blocking command: %+v", block)
	}

	refresh := Refresh(42, true)
	if refresh.Kind != KindRefresh || !refresh.Paused || refresh.RemainingSeconds != 42 {
		t.Fatalf("unexpected refresh command: %+v", refresh)
	}
}
