// Package session implements the picker state machine that ties the
// hold-and-release gesture to list navigation and commit.
//
// A Session is either Idle or Open. Opening takes an immutable snapshot of
// the history; every later operation works on that snapshot, so clipboard
// activity while the picker is showing cannot shift the cursor.
//
// Session holds no locks and performs no I/O. The owner applies the side
// effects (clipboard write, release-watch teardown) for the outcomes it
// returns.
package session

import "strings"

// State is the session lifecycle tag.
type State int

const (
	Idle State = iota
	Open
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

// Session is the picker state machine.
type Session struct {
	state    State
	snapshot []string
	view     []int // snapshot indices matching filter, in snapshot order
	filter   string
	cursor   int
	watch    uint64
}

// New returns an Idle session.
func New() *Session { return &Session{} }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// IsOpen reports whether a picker is active.
func (s *Session) IsOpen() bool { return s.state == Open }

// Watch returns the release-watch id bound to the open session, or 0.
func (s *Session) Watch() uint64 { return s.watch }

// Open moves Idle → Open over a copy of snapshot. watch identifies the
// modifier-release watch started for this session (0 when none). It reports
// false if a session is already open.
func (s *Session) Open(snapshot []string, watch uint64) bool {
	if s.state == Open {
		return false
	}
	s.state = Open
	s.snapshot = append([]string(nil), snapshot...)
	s.filter = ""
	s.cursor = 0
	s.watch = watch
	s.rebuild()
	return true
}

// Cycle advances the cursor by one, wrapping at the end of the filtered view.
func (s *Session) Cycle() {
	if s.state != Open || len(s.view) == 0 {
		return
	}
	s.cursor = (s.clamped() + 1) % len(s.view)
}

// Move shifts the cursor by delta, clamped to the filtered view.
func (s *Session) Move(delta int) {
	if s.state != Open || len(s.view) == 0 {
		return
	}
	s.cursor = clamp(s.clamped()+delta, len(s.view))
}

// SetFilter replaces the live filter. The cursor stays on the same entry if
// it is still visible and resets to the top otherwise.
func (s *Session) SetFilter(filter string) {
	if s.state != Open || filter == s.filter {
		return
	}
	selected := -1
	if len(s.view) > 0 {
		selected = s.view[s.clamped()]
	}
	s.filter = filter
	s.rebuild()
	s.cursor = 0
	for i, idx := range s.view {
		if idx == selected {
			s.cursor = i
			break
		}
	}
}

// Filter returns the live filter string.
func (s *Session) Filter() string { return s.filter }

// Cursor returns the cursor position within the filtered view.
func (s *Session) Cursor() int {
	if len(s.view) == 0 {
		return 0
	}
	return s.clamped()
}

// FilteredEntries returns the snapshot entries matching the filter.
func (s *Session) FilteredEntries() []string {
	out := make([]string, len(s.view))
	for i, idx := range s.view {
		out[i] = s.snapshot[idx]
	}
	return out
}

// Selected returns the entry under the cursor.
func (s *Session) Selected() (string, bool) {
	if s.state != Open || len(s.view) == 0 {
		return "", false
	}
	return s.snapshot[s.view[s.clamped()]], true
}

// Commit moves Open → Idle and returns the entry to write, if any. ok is
// false when no session was open or the filtered view was empty.
func (s *Session) Commit() (text string, ok bool) {
	if s.state != Open {
		return "", false
	}
	text, ok = s.Selected()
	s.reset()
	return text, ok
}

// Cancel moves Open → Idle without producing an entry. It reports whether a
// session was open.
func (s *Session) Cancel() bool {
	if s.state != Open {
		return false
	}
	s.reset()
	return true
}

// View is a read-only description of the session for presenters.
type View struct {
	State   State    `json:"state"`
	Filter  string   `json:"filter"`
	Cursor  int      `json:"cursor"`
	Entries []string `json:"entries"`
}

// View returns the presenter view of the session.
func (s *Session) View() View {
	return View{
		State:   s.state,
		Filter:  s.filter,
		Cursor:  s.Cursor(),
		Entries: s.FilteredEntries(),
	}
}

func (s *Session) reset() {
	*s = Session{}
}

func (s *Session) rebuild() {
	s.view = s.view[:0]
	needle := strings.ToLower(s.filter)
	for i, e := range s.snapshot {
		if needle == "" || strings.Contains(strings.ToLower(e), needle) {
			s.view = append(s.view, i)
		}
	}
}

// clamped returns the cursor forced into range. An out-of-range cursor can
// only come from a defect; it is repaired rather than trusted.
func (s *Session) clamped() int {
	s.cursor = clamp(s.cursor, len(s.view))
	return s.cursor
}

func clamp(i, n int) int {
	switch {
	case n == 0 || i < 0:
		return 0
	case i >= n:
		return n - 1
	default:
		return i
	}
}
