// Package hotkey owns the global key bindings and the modifier-release watch.
//
// OS hooks fire on their own goroutines (or OS threads). The Controller never
// lets them call into application state: every hook callback turns into an
// immutable Event posted to a single ordered queue, and the consumer drains
// Events() on its own goroutine.
//
// Platform code sits behind two small interfaces. Registrar binds a combo
// (golang.design/x/hotkey in production) and ReleaseHook reports the release
// of one modifier key (robotn/gohook in production). Tests supply fakes.
package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrUnavailable is returned when the OS refuses a binding or hook, or the
// hook code panics.
var ErrUnavailable = errors.New("hotkey unavailable")

// DefaultQueueSize is the capacity of the event queue.
const DefaultQueueSize = 64

// Slot names one of the two configurable bindings.
type Slot int

const (
	Primary Slot = iota
	Secondary
)

func (s Slot) String() string {
	if s == Secondary {
		return "secondary"
	}
	return "primary"
}

// Kind is the event type.
type Kind int

const (
	// Trigger is one press of a bound combo.
	Trigger Kind = iota + 1
	// Release is the watched modifier going up.
	Release
)

func (k Kind) String() string {
	switch k {
	case Trigger:
		return "trigger"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// Event is the value that crosses from hook context to consumer.
type Event struct {
	Kind Kind
	Slot Slot
	// Watch is the release watch that produced a Release event.
	Watch uint64
}

// Handle is one live OS registration.
type Handle interface {
	Unregister() error
}

// Registrar binds combos at the OS level. fire is called once per press of
// the trigger key while the modifiers are held, from any goroutine.
type Registrar interface {
	Register(b Binding, fire func()) (Handle, error)
}

// ReleaseHook watches a single modifier key. fire is called from any
// goroutine each time the key goes up until stop is called. stop must not
// return before the hook is torn down.
type ReleaseHook interface {
	Watch(mod string, fire func()) (stop func(), err error)
}

type slotState struct {
	binding Binding
	handle  Handle
	err     error
}

// Controller manages the primary and secondary bindings and the release
// watch, and marshals their callbacks onto one event queue.
type Controller struct {
	reg    Registrar
	hook   ReleaseHook
	events chan Event

	dropped atomic.Uint64
	active  atomic.Uint64 // id of the running release watch, 0 if none

	mu        sync.Mutex
	slots     [2]slotState
	watchSeq  uint64
	watchStop func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithQueueSize sets the event queue capacity.
func WithQueueSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.events = make(chan Event, n)
		}
	}
}

// NewController returns a Controller with no bindings.
func NewController(reg Registrar, hook ReleaseHook, opts ...Option) *Controller {
	c := &Controller{
		reg:    reg,
		hook:   hook,
		events: make(chan Event, DefaultQueueSize),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Events returns the ordered event queue. It is never closed.
func (c *Controller) Events() <-chan Event { return c.events }

// Dropped returns how many events were lost to a full queue.
func (c *Controller) Dropped() uint64 { return c.dropped.Load() }

// BindPrimary replaces the primary binding.
func (c *Controller) BindPrimary(combo string) error { return c.Bind(Primary, combo) }

// BindSecondary replaces the secondary binding.
func (c *Controller) BindSecondary(combo string) error { return c.Bind(Secondary, combo) }

// Bind unregisters the slot's current combo and registers combo in its place.
// "none" or "" leaves the slot disabled. On error the slot is left disabled
// and the other slot is untouched.
func (c *Controller) Bind(slot Slot, combo string) error {
	b, err := Parse(combo)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.unbindLocked(slot)
	if err != nil {
		c.slots[slot].err = err
		return err
	}
	if b.IsZero() {
		slog.Debug("hotkey disabled", "slot", slot)
		return nil
	}

	h, err := register(c.reg, b, func() { c.post(Event{Kind: Trigger, Slot: slot}) })
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrUnavailable, b, err)
		c.slots[slot].err = err
		return err
	}
	c.slots[slot] = slotState{binding: b, handle: h}
	slog.Info("hotkey registered", "slot", slot, "combo", b.String())
	return nil
}

// Binding returns the slot's active binding, or the error that left it
// disabled.
func (c *Controller) Binding(slot Slot) (Binding, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.slots[slot]
	return st.binding, st.err
}

// StartReleaseWatch begins watching mod and returns the watch id carried by
// its Release event. Any previous watch is stopped first. The event fires at
// most once per watch.
func (c *Controller) StartReleaseWatch(mod string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopWatchLocked()
	c.watchSeq++
	id := c.watchSeq

	var fired atomic.Bool
	fire := func() {
		if c.active.Load() != id || !fired.CompareAndSwap(false, true) {
			return
		}
		c.post(Event{Kind: Release, Slot: Primary, Watch: id})
	}

	c.active.Store(id)
	stop, err := watch(c.hook, mod, fire)
	if err != nil {
		c.active.Store(0)
		return 0, fmt.Errorf("%w: release watch on %s: %v", ErrUnavailable, mod, err)
	}
	if stop == nil {
		stop = func() {}
	}
	c.watchStop = stop
	slog.Debug("release watch started", "mod", mod, "watch", id)
	return id, nil
}

// StopReleaseWatch ends the current watch, if any, and returns once the hook
// is torn down.
func (c *Controller) StopReleaseWatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopWatchLocked()
}

// Watching reports whether a release watch is running.
func (c *Controller) Watching() bool { return c.active.Load() != 0 }

// Close releases every registration and the release watch.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopWatchLocked()
	c.unbindLocked(Primary)
	c.unbindLocked(Secondary)
}

func (c *Controller) unbindLocked(slot Slot) {
	st := c.slots[slot]
	c.slots[slot] = slotState{}
	if st.handle == nil {
		return
	}
	if err := unregister(st.handle); err != nil {
		slog.Warn("hotkey unregister failed", "slot", slot, "combo", st.binding.String(), "err", err)
		return
	}
	slog.Debug("hotkey unregistered", "slot", slot, "combo", st.binding.String())
}

func (c *Controller) stopWatchLocked() {
	id := c.active.Swap(0)
	if c.watchStop == nil {
		return
	}
	stop := c.watchStop
	c.watchStop = nil
	if err := safely(func() error { stop(); return nil }); err != nil {
		slog.Warn("release watch stop failed", "watch", id, "err", err)
	}
	slog.Debug("release watch stopped", "watch", id)
}

// post hands ev to the consumer without blocking the hook context.
func (c *Controller) post(ev Event) {
	select {
	case c.events <- ev:
	default:
		n := c.dropped.Add(1)
		slog.Warn("hotkey event queue full, dropping", "kind", ev.Kind, "slot", ev.Slot, "dropped", n)
	}
}

// safely runs fn, turning a panic into an ErrUnavailable error.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrUnavailable, r)
		}
	}()
	return fn()
}

func register(reg Registrar, b Binding, fire func()) (h Handle, err error) {
	err = safely(func() error {
		h, err = reg.Register(b, fire)
		return err
	})
	return h, err
}

func unregister(h Handle) error {
	return safely(h.Unregister)
}

func watch(hook ReleaseHook, mod string, fire func()) (stop func(), err error) {
	err = safely(func() error {
		stop, err = hook.Watch(mod, fire)
		return err
	})
	return stop, err
}
