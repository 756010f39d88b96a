//go:build linux || darwin || windows

package hotkey

import (
	"fmt"
	"sync"

	hook "github.com/robotn/gohook"
)

// gohookRelease watches modifier releases through the process-wide gohook
// event stream. gohook has a single global hook, so watches are serialized.
type gohookRelease struct {
	mu sync.Mutex
}

// NewReleaseHook returns the gohook-backed ReleaseHook.
func NewReleaseHook() ReleaseHook { return &gohookRelease{} }

func (r *gohookRelease) Watch(mod string, fire func()) (func(), error) {
	codes := modifierCodes(mod, hook.Keycode)
	if len(codes) == 0 {
		return nil, fmt.Errorf("no key codes for modifier %q", mod)
	}

	r.mu.Lock()
	evs := hook.Start()
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			case ev, ok := <-evs:
				if !ok {
					return
				}
				if ev.Kind == hook.KeyUp && codes[ev.Keycode] {
					fire()
				}
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			<-exited
			hook.End()
			r.mu.Unlock()
		})
	}
	return stop, nil
}
