//go:build !darwin && !windows && !linux

package clip

type noKeyboard struct{}

// NewKeyboard returns a Keyboard that always fails.
func NewKeyboard() Keyboard { return noKeyboard{} }

func (noKeyboard) Paste() error      { return ErrUnsupported }
func (noKeyboard) Type(string) error { return ErrUnsupported }
