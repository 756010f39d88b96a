//go:build linux || darwin || windows

package hotkey

import (
	"fmt"
	"log/slog"
	"time"

	"golang.design/x/hotkey"
	"golang.design/x/hotkey/mainthread"
)

const unregisterTimeout = 500 * time.Millisecond

// keyMap maps canonical key tokens to golang.design/x/hotkey keys.
var keyMap = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,

	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,

	"space":  hotkey.KeySpace,
	"tab":    hotkey.KeyTab,
	"enter":  hotkey.KeyReturn,
	"escape": hotkey.KeyEscape,
	"delete": hotkey.KeyDelete,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
}

type osRegistrar struct{}

// NewRegistrar returns the golang.design/x/hotkey registrar.
func NewRegistrar() Registrar { return osRegistrar{} }

func (osRegistrar) Register(b Binding, fire func()) (Handle, error) {
	mods := make([]hotkey.Modifier, 0, len(b.Mods))
	for _, m := range b.Mods {
		mod, ok := modifierMap[m]
		if !ok {
			return nil, fmt.Errorf("modifier %q not supported on this platform", m)
		}
		mods = append(mods, mod)
	}
	key, ok := keyMap[b.Key]
	if !ok {
		return nil, fmt.Errorf("key %q not supported on this platform", b.Key)
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, err
	}
	h := &osHandle{hk: hk, combo: b.String(), stop: make(chan struct{})}
	go h.listen(fire)
	return h, nil
}

type osHandle struct {
	hk    *hotkey.Hotkey
	combo string
	stop  chan struct{}
}

// listen forwards every keydown; auto-repeat while the key is held counts as
// another press, which is what cycling relies on.
func (h *osHandle) listen(fire func()) {
	for {
		select {
		case <-h.stop:
			return
		case _, ok := <-h.hk.Keydown():
			if !ok {
				return
			}
			fire()
		}
	}
}

// Unregister stops the listener and releases the grab. Some X11 setups hang
// in Unregister, so it gives up after unregisterTimeout.
func (h *osHandle) Unregister() error {
	close(h.stop)
	done := make(chan error, 1)
	go func() { done <- h.hk.Unregister() }()
	select {
	case err := <-done:
		return err
	case <-time.After(unregisterTimeout):
		slog.Warn("hotkey unregister timed out", "combo", h.combo)
		return nil
	}
}

// RunOnMainThread runs fn with the OS main thread reserved for hotkey and
// clipboard calls, as macOS requires.
func RunOnMainThread(fn func()) {
	mainthread.Init(fn)
}
