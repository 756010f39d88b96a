package notify

import (
	"errors"
	"strings"
	"testing"
)

type sent struct{ title, message string }

func newTestNotifier(enabled bool) (*Notifier, *[]sent) {
	var got []sent
	n := New(enabled)
	n.send = func(title, message, _ string) error {
		got = append(got, sent{title, message})
		return nil
	}
	return n, &got
}

func TestDisabledSendsNothing(t *testing.T) {
	n, got := newTestNotifier(false)
	n.Pasted("x")
	n.Error("boom")
	if len(*got) != 0 {
		t.Fatalf("expected no notifications, got %+v", *got)
	}
}

func TestToggle(t *testing.T) {
	n, got := newTestNotifier(true)
	n.Pasted("hello")
	n.SetEnabled(false)
	n.Typed("ignored")
	if len(*got) != 1 || (*got)[0].message != "hello" {
		t.Fatalf("expected one pasted notification, got %+v", *got)
	}
	if !strings.HasPrefix((*got)[0].title, "smartclip: ") {
		t.Fatalf("expected app name prefix, got %q", (*got)[0].title)
	}
}

func TestUnavailableMessage(t *testing.T) {
	n, got := newTestNotifier(true)
	n.Unavailable("primary", "ctrl+g", errors.New("grab failed"))
	if len(*got) != 1 || !strings.Contains((*got)[0].message, "primary hotkey ctrl+g: grab failed") {
		t.Fatalf("unexpected notification %+v", *got)
	}
}

func TestLongTextShortened(t *testing.T) {
	n, got := newTestNotifier(true)
	n.Pasted(strings.Repeat("a", 300))
	if msg := (*got)[0].message; len([]rune(msg)) != 101 {
		t.Fatalf("expected 100 runes plus ellipsis, got %d", len([]rune(msg)))
	}
}

func TestSendErrorIgnored(t *testing.T) {
	n := New(true)
	n.send = func(string, string, string) error { return errors.New("no dbus") }
	n.Error("still fine")
}

func TestCopiedRateLimited(t *testing.T) {
	n, got := newTestNotifier(true)
	n.Copied("first")
	n.Copied("second")
	n.Copied("third")
	if len(*got) != 1 || (*got)[0].message != "first" {
		t.Fatalf("expected one copied notification, got %+v", *got)
	}
	if (*got)[0].title != "smartclip: copied" {
		t.Fatalf("expected copied title, got %q", (*got)[0].title)
	}
}

func TestCopiedDisabledKeepsAllowance(t *testing.T) {
	n, got := newTestNotifier(false)
	n.Copied("while off")
	n.SetEnabled(true)
	n.Copied("after")
	if len(*got) != 1 || (*got)[0].message != "after" {
		t.Fatalf("expected the first enabled copy to notify, got %+v", *got)
	}
}
