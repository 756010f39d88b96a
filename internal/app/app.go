// Package app is the process-wide controller. A single goroutine, Run, owns
// the history store and the selection session; hotkey events, clipboard
// change signals and requests from the IPC server or the tray all reach it
// through channels and are handled one at a time in arrival order.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.klb.dev/smartclip/internal/clip"
	"go.klb.dev/smartclip/internal/config"
	"go.klb.dev/smartclip/internal/history"
	"go.klb.dev/smartclip/internal/hotkey"
	"go.klb.dev/smartclip/internal/hub"
	"go.klb.dev/smartclip/internal/notify"
	"go.klb.dev/smartclip/internal/session"
	"go.klb.dev/smartclip/internal/store"
)

// DefaultPasteDelay lets the clipboard write settle before the synthetic
// paste keystroke.
const DefaultPasteDelay = 100 * time.Millisecond

// ErrStopped is returned by requests made after Run has returned.
var ErrStopped = errors.New("smartclip is shutting down")

// Clipboard is the part of clip.Backend the app uses.
type Clipboard interface {
	Name() string
	ReadText() (string, error)
	WriteText(text string) error
	Watch() <-chan struct{}
}

// Options wires the app's collaborators.
type Options struct {
	Clipboard Clipboard
	Keyboard  clip.Keyboard
	Hotkeys   *hotkey.Controller
	Persister store.Persister
	Hub       *hub.Hub
	Notifier  *notify.Notifier
	Settings  config.Settings

	// SaveSettings persists settings changed through the app. Nil keeps
	// changes in memory only.
	SaveSettings func(config.Settings) error

	PasteDelay time.Duration
	Version    string
}

// App is the clipboard-history controller.
type App struct {
	clipboard    Clipboard
	keyboard     clip.Keyboard
	hotkeys      *hotkey.Controller
	persister    store.Persister
	hub          *hub.Hub
	notifier     *notify.Notifier
	saveSettings func(config.Settings) error
	pasteDelay   time.Duration
	version      string

	requestTimeout time.Duration

	// Owned by the Run goroutine.
	history  *history.Store
	session  *session.Session
	settings config.Settings
	started  time.Time

	requests chan func()
	done     chan struct{}
}

// New returns an App. Nothing is loaded or bound until Run.
func New(opts Options) *App {
	a := &App{
		clipboard:    opts.Clipboard,
		keyboard:     opts.Keyboard,
		hotkeys:      opts.Hotkeys,
		persister:    opts.Persister,
		hub:          opts.Hub,
		notifier:     opts.Notifier,
		saveSettings: opts.SaveSettings,
		pasteDelay:   opts.PasteDelay,
		version:      opts.Version,
		settings:     opts.Settings.Normalize(),
		session:      session.New(),
		requests:     make(chan func()),
		done:         make(chan struct{}),
	}
	if a.hub == nil {
		a.hub = hub.New()
	}
	if a.notifier == nil {
		a.notifier = notify.New(false)
	}
	if a.pasteDelay <= 0 {
		a.pasteDelay = DefaultPasteDelay
	}
	a.requestTimeout = DefaultRequestTimeout
	a.history = history.New(a.settings.MaxSize)
	return a
}

// Hub returns the hub history changes are published on.
func (a *App) Hub() *hub.Hub { return a.hub }

// Run loads the history, binds the hotkeys and processes events until ctx is
// cancelled. On return the bindings are released and the history saved.
func (a *App) Run(ctx context.Context) error {
	defer close(a.done)
	a.started = time.Now()

	a.load()
	a.notifier.SetEnabled(a.settings.ShowNotifications)
	a.bind(hotkey.Primary, a.settings.PrimaryHotkey)
	a.bind(hotkey.Secondary, a.settings.SecondaryHotkey)

	slog.Info("smartclip ready",
		"entries", a.history.Len(),
		"max_size", a.history.MaxSize(),
		"clipboard", a.clipboard.Name(),
		"store", a.persister.Location(),
	)

	changes := a.clipboard.Watch()
	for {
		select {
		case ev := <-a.hotkeys.Events():
			a.handleHotkey(ev)
		case <-changes:
			a.observeClipboard()
		case fn := <-a.requests:
			fn()
		case <-ctx.Done():
			a.shutdown()
			return nil
		}
	}
}

// Do runs fn on the Run goroutine and waits for it to finish.
func (a *App) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	req := func() {
		defer close(finished)
		fn()
	}
	select {
	case a.requests <- req:
	case <-a.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

func (a *App) load() {
	entries, err := a.persister.Load()
	if err != nil {
		slog.Warn("history load failed, starting empty", "path", a.persister.Location(), "err", err)
		entries = nil
	}
	a.history.Load(entries)
	a.publish(hub.ReasonLoad)
}

func (a *App) shutdown() {
	if a.session.Cancel() {
		slog.Debug("session cancelled by shutdown")
	}
	a.hotkeys.Close()
	a.persist()
	slog.Info("smartclip stopped", "entries", a.history.Len())
}

func (a *App) handleHotkey(ev hotkey.Event) {
	switch ev.Kind {
	case hotkey.Trigger:
		if ev.Slot == hotkey.Primary {
			a.primaryTrigger()
		} else {
			a.typeTop()
		}
	case hotkey.Release:
		if !a.session.IsOpen() || ev.Watch != a.session.Watch() {
			slog.Debug("stale release ignored", "watch", ev.Watch)
			return
		}
		a.commit()
	}
}

// primaryTrigger opens a session on the first press and cycles on repeats.
func (a *App) primaryTrigger() {
	if a.session.IsOpen() {
		a.session.Cycle()
		slog.Debug("session cycled", "cursor", a.session.Cursor())
		return
	}
	b, _ := a.hotkeys.Binding(hotkey.Primary)
	id, err := a.hotkeys.StartReleaseWatch(b.Primary())
	if err != nil {
		slog.Warn("modifier release watch unavailable, session needs an explicit accept", "mod", b.Primary(), "err", err)
		id = 0
	}
	a.session.Open(a.history.Snapshot(), id)
	slog.Debug("session opened", "entries", len(a.session.FilteredEntries()), "watch", id)
}

// commit ends the session and pastes the selected entry, if any.
func (a *App) commit() {
	text, ok := a.session.Commit()
	a.hotkeys.StopReleaseWatch()
	if !ok {
		slog.Debug("session closed with nothing selected")
		return
	}
	if err := a.clipboard.WriteText(text); err != nil {
		slog.Warn("clipboard write failed, commit abandoned", "err", err)
		a.notifier.Error("could not write the clipboard")
		return
	}
	a.push(text, hub.ReasonCommit)

	time.AfterFunc(a.pasteDelay, func() {
		if err := a.keyboard.Paste(); err != nil {
			slog.Warn("paste emulation failed", "err", err)
			return
		}
		a.notifier.Pasted(text)
	})
}

// cancel ends the session without touching the clipboard.
func (a *App) cancel() bool {
	open := a.session.Cancel()
	a.hotkeys.StopReleaseWatch()
	if open {
		slog.Debug("session cancelled")
	}
	return open
}

// typeTop types the most recent entry into the focused window.
func (a *App) typeTop() {
	if a.session.IsOpen() {
		return
	}
	text, ok := a.history.Top()
	if !ok {
		return
	}
	time.AfterFunc(a.pasteDelay, func() {
		if err := a.keyboard.Type(text); err != nil {
			slog.Warn("typing failed", "err", err)
			return
		}
		a.notifier.Typed(text)
	})
}

func (a *App) observeClipboard() {
	text, err := a.clipboard.ReadText()
	if err != nil {
		slog.Debug("clipboard read failed", "err", err)
		return
	}
	if a.push(text, hub.ReasonClipboard) {
		a.notifier.Copied(text)
	}
}

// push records text and, if the history changed, saves and publishes it.
func (a *App) push(text string, reason hub.Reason) bool {
	if !a.history.Push(text) {
		return false
	}
	hub.LogText("history updated", reason, text, a.history.Len())
	a.persist()
	a.publish(reason)
	return true
}

func (a *App) persist() {
	if err := a.persister.Save(a.history.Export()); err != nil {
		slog.Warn("history save failed", "path", a.persister.Location(), "err", err)
	}
}

func (a *App) publish(reason hub.Reason) {
	a.hub.Publish(hub.Event{Reason: reason, Entries: a.history.Snapshot()})
}

func (a *App) bind(slot hotkey.Slot, combo string) {
	if err := a.hotkeys.Bind(slot, combo); err != nil {
		slog.Warn("hotkey unavailable", "slot", slot, "combo", combo, "err", err)
		a.notifier.Unavailable(slot.String(), combo, err)
	}
}

// applySettings switches to s, rebinding only the slots whose combo changed.
func (a *App) applySettings(s config.Settings, save bool) {
	s = s.Normalize()
	old := a.settings
	a.settings = s

	if a.history.SetMaxSize(s.MaxSize) {
		a.persist()
		a.publish(hub.ReasonResize)
	}
	if !sameCombo(s.PrimaryHotkey, old.PrimaryHotkey) {
		a.cancel()
		a.bind(hotkey.Primary, s.PrimaryHotkey)
	}
	if !sameCombo(s.SecondaryHotkey, old.SecondaryHotkey) {
		a.bind(hotkey.Secondary, s.SecondaryHotkey)
	}
	a.notifier.SetEnabled(s.ShowNotifications)

	if save && a.saveSettings != nil && s != old {
		if err := a.saveSettings(s); err != nil {
			slog.Warn("settings save failed", "err", err)
		}
	}
}

// sameCombo reports whether two combo strings name the same binding, so
// "Ctrl + G" does not rebind ctrl+g.
func sameCombo(a, b string) bool {
	x, errX := hotkey.Parse(a)
	y, errY := hotkey.Parse(b)
	if errX != nil || errY != nil {
		return a == b
	}
	return x.Equal(y)
}
