package store

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.klb.dev/smartclip/internal/crypto"
)

func TestFileMissingLoadsEmpty(t *testing.T) {
	f, _ := OpenFile(t.TempDir(), "")
	got, err := f.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	f, _ := OpenFile(dir, "")
	want := []string{"c", "b", "line one\nline two", "  padded  "}
	if err := f.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := f.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}

	info, err := os.Stat(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected mode 0600, got %o", perm)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the history file, found %d entries", len(entries))
	}
}

func TestFileCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, _ := OpenFile(dir, "")
	if _, err := f.Load(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestFileSealed(t *testing.T) {
	dir := t.TempDir()
	f, _ := OpenFile(dir, "hunter2")
	if err := f.Save([]string{"secret"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "secret") {
		t.Fatalf("expected sealed file not to contain plaintext")
	}

	reopened, _ := OpenFile(dir, "hunter2")
	got, err := reopened.Load()
	if err != nil || !slices.Equal(got, []string{"secret"}) {
		t.Fatalf("expected [secret], got %q %v", got, err)
	}

	wrong, _ := OpenFile(dir, "nope")
	if _, err := wrong.Load(); !errors.Is(err, crypto.ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}

	plain, _ := OpenFile(dir, "")
	if _, err := plain.Load(); !errors.Is(err, ErrSealed) {
		t.Fatalf("expected ErrSealed, got %v", err)
	}
}

func TestFilePlainReadWithPassphrase(t *testing.T) {
	dir := t.TempDir()
	plain, _ := OpenFile(dir, "")
	_ = plain.Save([]string{"a"})

	sealed, _ := OpenFile(dir, "pw")
	got, err := sealed.Load()
	if err != nil || !slices.Equal(got, []string{"a"}) {
		t.Fatalf("expected plain file to load, got %q %v", got, err)
	}
	if err := sealed.Save(got); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := plain.Load(); !errors.Is(err, ErrSealed) {
		t.Fatalf("expected file to be sealed after save, got %v", err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenSQLite(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	got, err := db.Load()
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty history, got %q %v", got, err)
	}

	if err := db.Save([]string{"x", "y", "z"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.Save([]string{"y", "x"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = db.Load()
	if err != nil || !slices.Equal(got, []string{"y", "x"}) {
		t.Fatalf("expected [y x], got %q %v", got, err)
	}
}

func TestSQLiteDuplicateRejected(t *testing.T) {
	db, err := OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	_ = db.Save([]string{"keep"})
	if err := db.Save([]string{"a", "a"}); err == nil {
		t.Fatalf("expected unique constraint error")
	}
	got, _ := db.Load()
	if !slices.Equal(got, []string{"keep"}) {
		t.Fatalf("expected failed save to roll back, got %q", got)
	}
}

func TestOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	p, err := Open(Options{Dir: dir})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := p.(*File); !ok {
		t.Fatalf("expected json store by default, got %T", p)
	}
	if _, err := Open(Options{Kind: KindSQLite, Dir: dir, Passphrase: "x"}); err == nil {
		t.Fatalf("expected sqlite with passphrase to be refused")
	}
	if _, err := Open(Options{Kind: "yaml", Dir: dir}); err == nil {
		t.Fatalf("expected unknown kind to be refused")
	}
}
