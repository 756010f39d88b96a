//go:build !linux && !darwin && !windows

package hotkey

import "errors"

type noRelease struct{}

// NewReleaseHook returns a hook that cannot watch anything.
func NewReleaseHook() ReleaseHook { return noRelease{} }

func (noRelease) Watch(string, func()) (func(), error) {
	return nil, errors.New("key release hooks are not supported on this platform")
}
