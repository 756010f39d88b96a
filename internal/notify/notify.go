// Package notify shows desktop notifications when show-notifications is on.
package notify

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gen2brain/beeep"
	"golang.org/x/time/rate"

	"go.klb.dev/smartclip/internal/hub"
)

const appName = "smartclip"

// CopiedInterval is the minimum gap between clipboard-change notifications.
const CopiedInterval = 5 * time.Second

// Notifier sends desktop notifications. Errors from the notification
// service are logged and otherwise ignored.
type Notifier struct {
	enabled atomic.Bool
	send    func(title, message, icon string) error
	copied  rate.Sometimes
}

// New returns a Notifier backed by beeep.
func New(enabled bool) *Notifier {
	n := &Notifier{
		send:   beeep.Notify,
		copied: rate.Sometimes{Interval: CopiedInterval},
	}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled turns notifications on or off.
func (n *Notifier) SetEnabled(enabled bool) { n.enabled.Store(enabled) }

// Enabled reports whether notifications are shown.
func (n *Notifier) Enabled() bool { return n.enabled.Load() }

// Unavailable reports a hotkey that could not be bound.
func (n *Notifier) Unavailable(slot, combo string, err error) {
	n.notify("hotkey unavailable", fmt.Sprintf("%s hotkey %s: %v", slot, combo, err))
}

// Copied reports new clipboard text. Bursts of copies produce one
// notification per CopiedInterval.
func (n *Notifier) Copied(text string) {
	if !n.enabled.Load() {
		return
	}
	n.copied.Do(func() { n.notify("copied", hub.Preview(text, 100)) })
}

// Pasted reports a committed entry.
func (n *Notifier) Pasted(text string) {
	n.notify("pasted", hub.Preview(text, 100))
}

// Typed reports an entry typed by the secondary hotkey.
func (n *Notifier) Typed(text string) {
	n.notify("typed", hub.Preview(text, 100))
}

// Error shows an error notification.
func (n *Notifier) Error(msg string) {
	n.notify("error", msg)
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled.Load() {
		return
	}
	if err := n.send(appName+": "+title, message, ""); err != nil {
		slog.Debug("notification failed", "err", err)
	}
}
