package tray

import (
	"strings"
	"testing"

	"go.klb.dev/smartclip/internal/hub"
)

func TestLabels(t *testing.T) {
	got := Labels([]string{"one", "two\n\tlines", strings.Repeat("z", 80)}, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(got))
	}
	if got[0] != "1. one" || got[1] != "2. two lines" {
		t.Fatalf("unexpected labels %q", got[:2])
	}
	if !strings.HasSuffix(got[2], "…") {
		t.Fatalf("expected long entry to be cut, got %q", got[2])
	}
}

func TestLabelsLimit(t *testing.T) {
	if got := Labels([]string{"a", "b", "c"}, 2); len(got) != 2 {
		t.Fatalf("expected 2 labels, got %q", got)
	}
}

func TestSendKeepsNewest(t *testing.T) {
	tr := New(Callbacks{}, true, false)
	tr.Send(hub.Event{Entries: []string{"old"}})
	tr.Send(hub.Event{Entries: []string{"new"}})
	ev := <-tr.events
	if ev.Entries[0] != "new" {
		t.Fatalf("expected newest snapshot, got %q", ev.Entries)
	}
}
