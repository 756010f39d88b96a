package history

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

func newTestStore(t *testing.T, size int, pushes ...string) *Store {
	t.Helper()
	s := New(size)
	for _, p := range pushes {
		s.Push(p)
	}
	return s
}

func expectEntries(t *testing.T, s *Store, want ...string) {
	t.Helper()
	got := s.Snapshot()
	if !slices.Equal(got, want) {
		t.Fatalf("expected entries %q, got %q", want, got)
	}
}

func TestPushOrdersMostRecentFirst(t *testing.T) {
	s := newTestStore(t, 10, "a", "b", "c")
	expectEntries(t, s, "c", "b", "a")
}

func TestPushMovesDuplicateToFront(t *testing.T) {
	s := newTestStore(t, 10, "a", "b", "c")
	if !s.Push("b") {
		t.Fatalf("expected push of existing entry to report a change")
	}
	expectEntries(t, s, "b", "c", "a")
}

func TestPushTopIsNoop(t *testing.T) {
	s := newTestStore(t, 10, "a", "b")
	if s.Push("b") {
		t.Fatalf("expected push of top entry to be a no-op")
	}
	expectEntries(t, s, "b", "a")
}

func TestPushIgnoresBlank(t *testing.T) {
	s := newTestStore(t, 10, "a")
	for _, blank := range []string{"", " ", "\t\n", "   \r\n"} {
		if s.Push(blank) {
			t.Fatalf("expected blank %q to be ignored", blank)
		}
	}
	expectEntries(t, s, "a")
}

func TestPushIsCaseSensitive(t *testing.T) {
	s := newTestStore(t, 10, "abc", "ABC")
	expectEntries(t, s, "ABC", "abc")
}

func TestPushEvictsTail(t *testing.T) {
	s := newTestStore(t, 3, "a", "b", "c", "d")
	expectEntries(t, s, "d", "c", "b")
}

func TestSetMaxSizeTrims(t *testing.T) {
	s := newTestStore(t, 10, "a", "b", "c")
	s.Push("b")
	if !s.SetMaxSize(2) {
		t.Fatalf("expected SetMaxSize to report trimmed entries")
	}
	expectEntries(t, s, "b", "c")
	if s.SetMaxSize(5) {
		t.Fatalf("expected growing the bound not to trim")
	}
	expectEntries(t, s, "b", "c")
}

func TestSetMaxSizeClamps(t *testing.T) {
	s := newTestStore(t, 10, "a", "b")
	s.SetMaxSize(0)
	if s.MaxSize() != 1 {
		t.Fatalf("expected bound 1, got %d", s.MaxSize())
	}
	expectEntries(t, s, "b")
	s.SetMaxSize(MaxMaxSize + 1)
	if s.MaxSize() != MaxMaxSize {
		t.Fatalf("expected bound %d, got %d", MaxMaxSize, s.MaxSize())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := newTestStore(t, 10, "a", "b")
	snap := s.Snapshot()
	snap[0] = "mutated"
	s.Push("c")
	if snap[1] != "a" || len(snap) != 2 {
		t.Fatalf("expected snapshot to be independent, got %q", snap)
	}
	expectEntries(t, s, "c", "b", "a")
}

func TestLoadSanitizes(t *testing.T) {
	s := New(3)
	s.Load([]string{"x", "", "y", "x", "  ", "z", "w"})
	expectEntries(t, s, "x", "y", "z")
}

func TestTopAndAt(t *testing.T) {
	s := New(5)
	if _, ok := s.Top(); ok {
		t.Fatalf("expected empty store to have no top")
	}
	s.Push("a")
	s.Push("b")
	if top, _ := s.Top(); top != "b" {
		t.Fatalf("expected top b, got %q", top)
	}
	if e, ok := s.At(1); !ok || e != "a" {
		t.Fatalf("expected a at 1, got %q", e)
	}
	if _, ok := s.At(2); ok {
		t.Fatalf("expected out of range At to fail")
	}
}

func TestRandomPushesKeepInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	s := New(8)
	for i := 0; i < 2000; i++ {
		prev := s.Snapshot()
		text := fmt.Sprintf("clip-%d", r.Intn(20))
		s.Push(text)

		got := s.Snapshot()
		if len(got) > s.MaxSize() {
			t.Fatalf("expected at most %d entries, got %d", s.MaxSize(), len(got))
		}
		if got[0] != text {
			t.Fatalf("expected %q at front, got %q", text, got[0])
		}
		// Remaining entries keep their relative order.
		rest := slices.DeleteFunc(slices.Clone(prev), func(e string) bool { return e == text })
		if n := len(got) - 1; n < len(rest) {
			rest = rest[:n]
		}
		if !slices.Equal(got[1:], rest) {
			t.Fatalf("expected tail %q, got %q", rest, got[1:])
		}
		if i%250 == 0 {
			s.SetMaxSize(4 + r.Intn(8))
		}
	}
}
