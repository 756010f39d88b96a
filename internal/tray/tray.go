// Package tray shows the system tray icon with the recent history and the
// notification and startup toggles.
package tray

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/getlantern/systray"

	"go.klb.dev/smartclip/internal/hub"
)

// RecentItems is how many history entries the Recent submenu shows.
const RecentItems = 10

const labelWidth = 48

// Callbacks holds the menu handlers. They run on the tray's goroutine.
type Callbacks struct {
	OnUse                 func(index int)
	OnNotificationsToggle func() (bool, error)
	OnRunAtStartupToggle  func() (bool, error)
	OnQuit                func()
}

// Tray owns the tray icon and menu. It subscribes to the hub to keep the
// Recent submenu current.
type Tray struct {
	callbacks Callbacks
	events    chan hub.Event

	notifications bool
	runAtStartup  bool

	status    *systray.MenuItem
	recent    *systray.MenuItem
	items     []*systray.MenuItem
	notifyOn  *systray.MenuItem
	startupOn *systray.MenuItem
	quitBtn   *systray.MenuItem
}

// New creates a Tray. The toggles start in the given states.
func New(callbacks Callbacks, notifications, runAtStartup bool) *Tray {
	return &Tray{
		callbacks:     callbacks,
		events:        make(chan hub.Event, 1),
		notifications: notifications,
		runAtStartup:  runAtStartup,
	}
}

// ID implements hub.Subscriber.
func (t *Tray) ID() string { return "tray" }

// Send implements hub.Subscriber. Only the newest snapshot matters, so an
// unread older one is replaced.
func (t *Tray) Send(ev hub.Event) {
	for {
		select {
		case t.events <- ev:
			return
		default:
		}
		select {
		case <-t.events:
		default:
		}
	}
}

// Run starts the tray. It blocks until Quit and must be called from the
// main goroutine.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, func() {})
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() { systray.Quit() }

// SetStatus sets the disabled status line at the top of the menu.
func (t *Tray) SetStatus(text string) {
	if t.status != nil {
		t.status.SetTitle(text)
	}
	systray.SetTooltip("smartclip - " + text)
}

func (t *Tray) onReady() {
	systray.SetIcon(icon)
	systray.SetTooltip("smartclip")

	t.status = systray.AddMenuItem("ready", "")
	t.status.Disable()

	systray.AddSeparator()

	t.recent = systray.AddMenuItem("Recent", "copy an earlier entry to the clipboard")
	for i := range RecentItems {
		mi := t.recent.AddSubMenuItem("", "")
		mi.Hide()
		t.items = append(t.items, mi)
		go t.handleUse(i, mi)
	}

	systray.AddSeparator()

	t.notifyOn = systray.AddMenuItemCheckbox("Show notifications", "", t.notifications)
	t.startupOn = systray.AddMenuItemCheckbox("Run at startup", "", t.runAtStartup)

	systray.AddSeparator()

	t.quitBtn = systray.AddMenuItem("Quit", "stop smartclip")

	go t.handleMenuEvents()
	go t.handleHistory()
}

func (t *Tray) handleUse(i int, mi *systray.MenuItem) {
	for range mi.ClickedCh {
		if t.callbacks.OnUse != nil {
			t.callbacks.OnUse(i)
		}
	}
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		case <-t.notifyOn.ClickedCh:
			toggle(t.notifyOn, "notifications", t.callbacks.OnNotificationsToggle)

		case <-t.startupOn.ClickedCh:
			toggle(t.startupOn, "run at startup", t.callbacks.OnRunAtStartupToggle)

		case <-t.quitBtn.ClickedCh:
			if t.callbacks.OnQuit != nil {
				t.callbacks.OnQuit()
			}
			systray.Quit()
			return
		}
	}
}

func (t *Tray) handleHistory() {
	for ev := range t.events {
		labels := Labels(ev.Entries, RecentItems)
		for i, mi := range t.items {
			if i < len(labels) {
				mi.SetTitle(labels[i])
				mi.Show()
			} else {
				mi.Hide()
			}
		}
		t.SetStatus(fmt.Sprintf("%d entries", len(ev.Entries)))
	}
}

// toggle runs fn and shows its result. On error the item keeps its state.
func toggle(mi *systray.MenuItem, name string, fn func() (bool, error)) {
	if fn == nil {
		return
	}
	on, err := fn()
	if err != nil {
		slog.Warn("tray: toggle failed", "item", name, "err", err)
		return
	}
	setChecked(mi, on)
}

func setChecked(mi *systray.MenuItem, on bool) {
	if on {
		mi.Check()
	} else {
		mi.Uncheck()
	}
}

// Labels returns one-line menu labels for the first n entries.
func Labels(entries []string, n int) []string {
	out := make([]string, 0, min(n, len(entries)))
	for i, e := range entries {
		if i == n {
			break
		}
		line := strings.Join(strings.Fields(e), " ")
		out = append(out, fmt.Sprintf("%d. %s", i+1, hub.Preview(line, labelWidth)))
	}
	return out
}
