//go:build !linux && !darwin && !windows

package hotkey

import "errors"

type osRegistrar struct{}

// NewRegistrar returns a registrar that refuses every binding.
func NewRegistrar() Registrar { return osRegistrar{} }

func (osRegistrar) Register(Binding, func()) (Handle, error) {
	return nil, errors.New("global hotkeys are not supported on this platform")
}

// RunOnMainThread runs fn directly.
func RunOnMainThread(fn func()) { fn() }
