// Package history implements the bounded, deduplicated clip history.
//
// The store behaves as an LRU-ordered set of strings: index 0 is the most
// recent entry, pushing an existing entry moves it to the front, and the tail
// is dropped once the configured bound is exceeded.
//
// A Store is not safe for concurrent use. It is owned by the app loop and
// only ever touched from that goroutine.
package history

import (
	"fmt"
	"strings"
)

const (
	// DefaultMaxSize is the bound used when none is configured.
	DefaultMaxSize = 1000

	// MaxMaxSize is the largest accepted bound.
	MaxMaxSize = 9999
)

// Store holds clip entries in recency order.
type Store struct {
	entries []string
	max     int
}

// New returns an empty store bounded to size entries.
func New(size int) *Store {
	return &Store{max: clampSize(size)}
}

// Push records text as the most recent entry and reports whether the store
// changed. Blank text and a repeat of the current top entry are no-ops.
func (s *Store) Push(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if len(s.entries) > 0 && s.entries[0] == text {
		return false
	}
	if i := s.index(text); i > 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
	s.entries = append(s.entries, "")
	copy(s.entries[1:], s.entries)
	s.entries[0] = text
	s.trim()
	s.check()
	return true
}

// SetMaxSize changes the bound, trimming the tail immediately when needed.
// It reports whether any entries were dropped. Values below 1 are treated as 1.
func (s *Store) SetMaxSize(n int) bool {
	s.max = clampSize(n)
	return s.trim()
}

// MaxSize returns the current bound.
func (s *Store) MaxSize() int { return s.max }

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Top returns the most recent entry.
func (s *Store) Top() (string, bool) {
	if len(s.entries) == 0 {
		return "", false
	}
	return s.entries[0], true
}

// At returns the entry at position i.
func (s *Store) At(i int) (string, bool) {
	if i < 0 || i >= len(s.entries) {
		return "", false
	}
	return s.entries[i], true
}

// Snapshot returns a copy of the entries, most recent first.
func (s *Store) Snapshot() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Export returns the entries in their persisted form.
func (s *Store) Export() []string { return s.Snapshot() }

// Load replaces the contents with entries. Blank values and later duplicates
// are dropped and the result is capped to the bound, so a hand-edited or
// stale history file cannot break the store's invariants.
func (s *Store) Load(entries []string) {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, min(len(entries), s.max))
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
		if len(out) == s.max {
			break
		}
	}
	s.entries = out
	s.check()
}

func (s *Store) index(text string) int {
	for i, e := range s.entries {
		if e == text {
			return i
		}
	}
	return -1
}

func (s *Store) trim() bool {
	if len(s.entries) <= s.max {
		return false
	}
	clear(s.entries[s.max:])
	s.entries = s.entries[:s.max]
	return true
}

// check panics if the uniqueness or bound invariant is broken. Both can only
// fail through a defect in this package.
func (s *Store) check() {
	if len(s.entries) > s.max {
		panic(fmt.Sprintf("history: %d entries exceed bound %d", len(s.entries), s.max))
	}
	seen := make(map[string]int, len(s.entries))
	for i, e := range s.entries {
		if j, dup := seen[e]; dup {
			panic(fmt.Sprintf("history: duplicate entry %q at %d and %d", e, j, i))
		}
		seen[e] = i
	}
}

func clampSize(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxMaxSize:
		return MaxMaxSize
	default:
		return n
	}
}
