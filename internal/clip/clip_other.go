//go:build !darwin && !windows && !linux

package clip

// New returns a no-op backend.
func New() Backend { return newHeadless() }
