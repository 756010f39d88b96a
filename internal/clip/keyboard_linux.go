//go:build linux

package clip

import (
	"fmt"
	"os"
	"os/exec"
)

type linuxKeyboard struct {
	wayland bool
}

// NewKeyboard returns a Keyboard driving xdotool on X11 or wtype on Wayland.
func NewKeyboard() Keyboard {
	return &linuxKeyboard{wayland: os.Getenv("WAYLAND_DISPLAY") != ""}
}

func (k *linuxKeyboard) Paste() error {
	if k.wayland {
		return run("wtype", "-M", "ctrl", "v", "-m", "ctrl")
	}
	return run("xdotool", "key", "--clearmodifiers", "ctrl+v")
}

func (k *linuxKeyboard) Type(text string) error {
	if k.wayland {
		return run("wtype", "--", text)
	}
	return run("xdotool", "type", "--clearmodifiers", "--", text)
}

func run(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s: %w", name, ErrUnsupported)
	}
	if out, err := exec.Command(name, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}
