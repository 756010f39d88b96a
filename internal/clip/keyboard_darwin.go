//go:build darwin

package clip

import (
	"fmt"
	"os/exec"
	"strings"
)

type darwinKeyboard struct{}

// NewKeyboard returns a Keyboard driving System Events through osascript.
// The calling app needs the Accessibility permission.
func NewKeyboard() Keyboard { return darwinKeyboard{} }

func (darwinKeyboard) Paste() error {
	return osascript(`tell application "System Events" to keystroke "v" using command down`)
}

func (darwinKeyboard) Type(text string) error {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return osascript(fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, r.Replace(text)))
}

func osascript(script string) error {
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, out)
	}
	return nil
}
