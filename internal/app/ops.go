package app

import (
	"context"
	"fmt"
	"strings"

	"go.klb.dev/smartclip/internal/config"
	"go.klb.dev/smartclip/internal/hotkey"
	"go.klb.dev/smartclip/internal/hub"
	"go.klb.dev/smartclip/internal/message"
)

// The methods below are safe to call from any goroutine. Each one is
// marshalled onto the Run goroutine through Do.

// List returns up to limit entries containing filter (case-insensitive),
// plus the total number of entries. limit <= 0 means no limit.
func (a *App) List(ctx context.Context, filter string, limit int) (entries []string, total int, err error) {
	err = a.Do(ctx, func() {
		all := a.history.Snapshot()
		total = len(all)
		needle := strings.ToLower(filter)
		for _, e := range all {
			if needle != "" && !strings.Contains(strings.ToLower(e), needle) {
				continue
			}
			entries = append(entries, e)
			if limit > 0 && len(entries) == limit {
				break
			}
		}
	})
	return entries, total, err
}

// Push records text as if it had been copied.
func (a *App) Push(ctx context.Context, text string) error {
	return a.Do(ctx, func() { a.push(text, hub.ReasonPush) })
}

// Use writes entry index to the clipboard and promotes it.
func (a *App) Use(ctx context.Context, index int) error {
	var useErr error
	err := a.Do(ctx, func() {
		text, ok := a.history.At(index)
		if !ok {
			useErr = fmt.Errorf("no entry at index %d (history has %d)", index, a.history.Len())
			return
		}
		if err := a.clipboard.WriteText(text); err != nil {
			useErr = fmt.Errorf("clipboard write: %w", err)
			return
		}
		a.push(text, hub.ReasonUse)
	})
	if err != nil {
		return err
	}
	return useErr
}

// Status summarises the running daemon.
func (a *App) Status(ctx context.Context) (st message.Status, err error) {
	err = a.Do(ctx, func() {
		st = message.Status{
			Version:   a.version,
			StartedAt: a.started,
			Clipboard: a.clipboard.Name(),
			Store:     a.persister.Location(),
			Entries:   a.history.Len(),
			MaxSize:   a.history.MaxSize(),
			Session:   a.session.State().String(),
			Primary:   a.hotkeyInfo(hotkey.Primary, a.settings.PrimaryHotkey),
			Secondary: a.hotkeyInfo(hotkey.Secondary, a.settings.SecondaryHotkey),
			Dropped:   a.hotkeys.Dropped(),
			Watchers:  a.hub.Len(),
		}
	})
	return st, err
}

func (a *App) hotkeyInfo(slot hotkey.Slot, combo string) message.HotkeyInfo {
	b, err := a.hotkeys.Binding(slot)
	info := message.HotkeyInfo{Combo: b.String()}
	if err != nil {
		info.Combo = combo
		info.Error = err.Error()
	}
	return info
}

// Session applies one picker operation and returns the resulting view.
// OpShow only reads the view.
func (a *App) Session(ctx context.Context, op message.SessionOp, filter string, delta int) (view message.SessionView, err error) {
	var opErr error
	err = a.Do(ctx, func() {
		switch op {
		case message.OpShow:
		case message.OpOpen:
			if !a.session.IsOpen() {
				a.session.Open(a.history.Snapshot(), 0)
			}
		case message.OpFilter:
			a.session.SetFilter(filter)
		case message.OpCycle:
			a.session.Cycle()
		case message.OpMove:
			a.session.Move(delta)
		case message.OpAccept:
			a.commit()
		case message.OpCancel:
			a.cancel()
		default:
			opErr = fmt.Errorf("unknown session op %q", op)
			return
		}
		view = a.view()
	})
	if err != nil {
		return view, err
	}
	return view, opErr
}

func (a *App) view() message.SessionView {
	v := a.session.View()
	return message.SessionView{
		State:   v.State.String(),
		Filter:  v.Filter,
		Cursor:  v.Cursor,
		Entries: v.Entries,
	}
}

// Settings returns the settings in effect.
func (a *App) Settings(ctx context.Context) (s config.Settings, err error) {
	err = a.Do(ctx, func() { s = a.settings })
	return s, err
}

// SetSetting changes one setting, applies it and saves the result.
func (a *App) SetSetting(ctx context.Context, key, value string) (s config.Settings, err error) {
	var setErr error
	err = a.Do(ctx, func() {
		next, err := a.settings.Set(key, value)
		if err != nil {
			setErr = err
			return
		}
		a.applySettings(next, true)
		s = a.settings
	})
	if err != nil {
		return s, err
	}
	return s, setErr
}

// ApplySettings switches to s without saving it. The config file watcher
// uses this after the file changed on disk.
func (a *App) ApplySettings(ctx context.Context, s config.Settings) error {
	return a.Do(ctx, func() { a.applySettings(s, false) })
}

// ToggleNotifications flips show-notifications and returns the new value.
func (a *App) ToggleNotifications(ctx context.Context) (on bool, err error) {
	err = a.Do(ctx, func() {
		s := a.settings
		s.ShowNotifications = !s.ShowNotifications
		a.applySettings(s, true)
		on = a.settings.ShowNotifications
	})
	return on, err
}

// ToggleRunAtStartup flips run-at-startup and returns the new value. The
// flag is only recorded; registering with the OS is left to the user.
func (a *App) ToggleRunAtStartup(ctx context.Context) (on bool, err error) {
	err = a.Do(ctx, func() {
		s := a.settings
		s.RunAtStartup = !s.RunAtStartup
		a.applySettings(s, true)
		on = a.settings.RunAtStartup
	})
	return on, err
}
