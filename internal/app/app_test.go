package app

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"go.klb.dev/smartclip/internal/config"
	"go.klb.dev/smartclip/internal/hotkey"
	"go.klb.dev/smartclip/internal/message"
)

type fakeClipboard struct {
	mu       sync.Mutex
	text     string
	readErr  error
	writeErr error
	writes   []string
	changes  chan struct{}
}

func newFakeClipboard() *fakeClipboard {
	return &fakeClipboard{changes: make(chan struct{}, 1)}
}

func (c *fakeClipboard) Name() string { return "fake" }

func (c *fakeClipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.readErr
}

func (c *fakeClipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.text = text
	c.writes = append(c.writes, text)
	return nil
}

func (c *fakeClipboard) Watch() <-chan struct{} { return c.changes }

// copy simulates the user copying text in another application.
func (c *fakeClipboard) copy(text string) {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

func (c *fakeClipboard) written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.writes)
}

type fakeKeyboard struct {
	mu     sync.Mutex
	pastes int
	typed  []string
}

func (k *fakeKeyboard) Paste() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pastes++
	return nil
}

func (k *fakeKeyboard) Type(text string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.typed = append(k.typed, text)
	return nil
}

func (k *fakeKeyboard) counts() (int, []string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.pastes, slices.Clone(k.typed)
}

type fakeHandle struct {
	reg   *fakeRegistrar
	combo string
}

func (h *fakeHandle) Unregister() error {
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	delete(h.reg.live, h.combo)
	return nil
}

type fakeRegistrar struct {
	mu     sync.Mutex
	live   map[string]func()
	refuse map[string]bool
}

func (r *fakeRegistrar) Register(b hotkey.Binding, fire func()) (hotkey.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refuse[b.String()] {
		return nil, errors.New("grab failed")
	}
	r.live[b.String()] = fire
	return &fakeHandle{reg: r, combo: b.String()}, nil
}

func (r *fakeRegistrar) press(t *testing.T, combo string) {
	t.Helper()
	r.mu.Lock()
	fire, ok := r.live[combo]
	r.mu.Unlock()
	if !ok {
		t.Fatalf("expected %s to be registered", combo)
	}
	fire()
}

func (r *fakeRegistrar) combos() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for c := range r.live {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

type fakeHook struct {
	mu      sync.Mutex
	mod     string
	fire    func()
	stopped int
}

func (h *fakeHook) Watch(mod string, fire func()) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mod, h.fire = mod, fire
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.fire = nil
		h.stopped++
	}, nil
}

// release simulates the watched modifier going up.
func (h *fakeHook) release() {
	h.mu.Lock()
	fire := h.fire
	h.mu.Unlock()
	if fire != nil {
		fire()
	}
}

type memPersister struct {
	mu      sync.Mutex
	entries []string
	saves   int
	loadErr error
	saveErr error
}

func (p *memPersister) Load() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.entries), p.loadErr
}

func (p *memPersister) Save(entries []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.entries = slices.Clone(entries)
	return nil
}

func (p *memPersister) saved() ([]string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.entries), p.saves
}

func (p *memPersister) Location() string { return "memory" }
func (p *memPersister) Close() error     { return nil }

type testApp struct {
	*App
	clip  *fakeClipboard
	kb    *fakeKeyboard
	reg   *fakeRegistrar
	hook  *fakeHook
	store *memPersister
	saved []config.Settings
}

func newTestApp(t *testing.T, entries ...string) *testApp {
	t.Helper()
	ta := &testApp{
		clip:  newFakeClipboard(),
		kb:    &fakeKeyboard{},
		reg:   &fakeRegistrar{live: map[string]func(){}, refuse: map[string]bool{}},
		hook:  &fakeHook{},
		store: &memPersister{entries: entries},
	}
	settings := config.Defaults()
	settings.SecondaryHotkey = "ctrl+shift+t"
	settings.ShowNotifications = false
	ta.App = New(Options{
		Clipboard:    ta.clip,
		Keyboard:     ta.kb,
		Hotkeys:      hotkey.NewController(ta.reg, ta.hook),
		Persister:    ta.store,
		Settings:     settings,
		SaveSettings: func(s config.Settings) error { ta.saved = append(ta.saved, s); return nil },
		PasteDelay:   time.Millisecond,
		Version:      "test",
	})
	return ta
}

// start performs Run's setup without the loop, so handlers can be driven
// directly from the test goroutine.
func (ta *testApp) start() *testApp {
	ta.load()
	ta.bind(hotkey.Primary, ta.settings.PrimaryHotkey)
	ta.bind(hotkey.Secondary, ta.settings.SecondaryHotkey)
	return ta
}

// next feeds the next queued hotkey event to the handler.
func (ta *testApp) next(t *testing.T) {
	t.Helper()
	select {
	case ev := <-ta.hotkeys.Events():
		ta.handleHotkey(ev)
	case <-time.After(time.Second):
		t.Fatalf("expected a hotkey event")
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHistoryScenario(t *testing.T) {
	ta := newTestApp(t).start()
	for _, s := range []string{"a", "b", "c", "b"} {
		ta.push(s, "test")
	}
	if got := ta.history.Snapshot(); !slices.Equal(got, []string{"b", "c", "a"}) {
		t.Fatalf("expected [b c a], got %q", got)
	}
	ta.applySettings(config.Settings{PrimaryHotkey: "ctrl+g", SecondaryHotkey: "ctrl+shift+t", MaxSize: 2}, true)
	if got := ta.history.Snapshot(); !slices.Equal(got, []string{"b", "c"}) {
		t.Fatalf("expected [b c], got %q", got)
	}
	if saved, _ := ta.store.saved(); !slices.Equal(saved, []string{"b", "c"}) {
		t.Fatalf("expected trimmed history persisted, got %q", saved)
	}
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	ta := newTestApp(t, "x")
	ta.store.loadErr = errors.New("corrupt")
	ta.start()
	if ta.history.Len() != 0 {
		t.Fatalf("expected empty history, got %q", ta.history.Snapshot())
	}
}

func TestLoadSanitizes(t *testing.T) {
	ta := newTestApp(t, "a", " ", "b", "a").start()
	if got := ta.history.Snapshot(); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("expected [a b], got %q", got)
	}
}

func TestObserveClipboard(t *testing.T) {
	ta := newTestApp(t, "a").start()
	ta.clip.copy("b")
	ta.observeClipboard()
	if got := ta.history.Snapshot(); !slices.Equal(got, []string{"b", "a"}) {
		t.Fatalf("expected [b a], got %q", got)
	}
	if saved, _ := ta.store.saved(); !slices.Equal(saved, []string{"b", "a"}) {
		t.Fatalf("expected push persisted, got %q", saved)
	}

	_, saves := ta.store.saved()
	ta.clip.copy("   ")
	ta.observeClipboard()
	ta.clip.copy("b")
	ta.observeClipboard()
	if _, n := ta.store.saved(); n != saves {
		t.Fatalf("expected no save for blank or repeated top text")
	}
}

func TestClipboardReadErrorAbandons(t *testing.T) {
	ta := newTestApp(t, "a").start()
	ta.clip.copy("b")
	ta.clip.readErr = errors.New("busy")
	ta.observeClipboard()
	if ta.history.Len() != 1 {
		t.Fatalf("expected no mutation on read failure, got %q", ta.history.Snapshot())
	}
}

func TestHoldCycleReleaseCommits(t *testing.T) {
	ta := newTestApp(t, "c", "b", "a").start()

	ta.reg.press(t, "ctrl+g")
	ta.next(t)
	if !ta.session.IsOpen() || ta.session.Cursor() != 0 {
		t.Fatalf("expected open session at cursor 0")
	}
	if ta.hook.mod != "ctrl" {
		t.Fatalf("expected release watch on ctrl, got %q", ta.hook.mod)
	}

	ta.clip.copy("new while open")
	ta.observeClipboard()

	ta.reg.press(t, "ctrl+g")
	ta.next(t)
	if ta.session.Cursor() != 1 {
		t.Fatalf("expected cursor 1 after cycle, got %d", ta.session.Cursor())
	}

	ta.hook.release()
	ta.next(t)

	if ta.session.IsOpen() {
		t.Fatalf("expected session closed after release")
	}
	if got := ta.clip.written(); !slices.Equal(got, []string{"b"}) {
		t.Fatalf("expected exactly one write of b from the snapshot, got %q", got)
	}
	if got := ta.history.Snapshot(); !slices.Equal(got, []string{"b", "new while open", "c", "a"}) {
		t.Fatalf("expected b promoted, got %q", got)
	}
	if ta.hotkeys.Watching() {
		t.Fatalf("expected release watch stopped")
	}
	eventually(t, "one paste", func() bool { n, _ := ta.kb.counts(); return n == 1 })
	time.Sleep(20 * time.Millisecond)
	if n, _ := ta.kb.counts(); n != 1 {
		t.Fatalf("expected exactly one paste, got %d", n)
	}
}

func TestCancelNeverWrites(t *testing.T) {
	ta := newTestApp(t, "a", "b").start()
	ta.reg.press(t, "ctrl+g")
	ta.next(t)

	if !ta.cancel() {
		t.Fatalf("expected cancel to close an open session")
	}
	if ta.hook.stopped != 1 || ta.hotkeys.Watching() {
		t.Fatalf("expected watch stopped synchronously")
	}
	ta.hook.release()
	select {
	case ev := <-ta.hotkeys.Events():
		t.Fatalf("expected no release after cancel, got %+v", ev)
	default:
	}
	time.Sleep(20 * time.Millisecond)
	if got := ta.clip.written(); len(got) != 0 {
		t.Fatalf("expected no clipboard writes, got %q", got)
	}
	if n, _ := ta.kb.counts(); n != 0 {
		t.Fatalf("expected no paste, got %d", n)
	}
}

func TestStaleReleaseIgnored(t *testing.T) {
	ta := newTestApp(t, "a").start()
	ta.reg.press(t, "ctrl+g")
	ta.next(t)

	ta.handleHotkey(hotkey.Event{Kind: hotkey.Release, Watch: ta.session.Watch() + 7})
	if !ta.session.IsOpen() {
		t.Fatalf("expected session to stay open on a stale release")
	}

	ta.cancel()
	ta.handleHotkey(hotkey.Event{Kind: hotkey.Release, Watch: 1})
	if len(ta.clip.written()) != 0 {
		t.Fatalf("expected idle session to ignore release")
	}
}

func TestCommitEmptyFilteredView(t *testing.T) {
	ta := newTestApp(t, "a").start()
	ta.reg.press(t, "ctrl+g")
	ta.next(t)
	ta.session.SetFilter("zzz")
	ta.commit()
	if ta.session.IsOpen() || ta.hotkeys.Watching() {
		t.Fatalf("expected session and watch closed")
	}
	if len(ta.clip.written()) != 0 {
		t.Fatalf("expected no write for empty view")
	}
}

func TestCommitWriteFailure(t *testing.T) {
	ta := newTestApp(t, "b", "a").start()
	ta.clip.writeErr = errors.New("clipboard locked")
	ta.reg.press(t, "ctrl+g")
	ta.next(t)
	ta.session.Cycle()
	ta.commit()

	if got := ta.history.Snapshot(); !slices.Equal(got, []string{"b", "a"}) {
		t.Fatalf("expected history untouched, got %q", got)
	}
	time.Sleep(20 * time.Millisecond)
	if n, _ := ta.kb.counts(); n != 0 {
		t.Fatalf("expected no paste after failed write, got %d", n)
	}
}

func TestSecondaryTypesTop(t *testing.T) {
	ta := newTestApp(t, "top", "older").start()
	ta.reg.press(t, "ctrl+shift+t")
	ta.next(t)
	eventually(t, "typing", func() bool { _, typed := ta.kb.counts(); return len(typed) == 1 })
	if _, typed := ta.kb.counts(); typed[0] != "top" {
		t.Fatalf("expected top typed, got %q", typed)
	}

	ta.reg.press(t, "ctrl+g")
	ta.next(t)
	ta.reg.press(t, "ctrl+shift+t")
	ta.next(t)
	time.Sleep(20 * time.Millisecond)
	if _, typed := ta.kb.counts(); len(typed) != 1 {
		t.Fatalf("expected secondary ignored while session open, got %q", typed)
	}
}

func TestSaveFailureKeepsMemory(t *testing.T) {
	ta := newTestApp(t).start()
	ta.store.saveErr = errors.New("disk full")
	ta.push("a", "test")
	if got := ta.history.Snapshot(); !slices.Equal(got, []string{"a"}) {
		t.Fatalf("expected in-memory history kept, got %q", got)
	}
}

func TestApplySettingsRebinds(t *testing.T) {
	ta := newTestApp(t, "a").start()
	ta.reg.press(t, "ctrl+g")
	ta.next(t)

	s := ta.settings
	s.PrimaryHotkey = "alt+v"
	s.SecondaryHotkey = "none"
	ta.applySettings(s, true)

	if got := ta.reg.combos(); !slices.Equal(got, []string{"alt+v"}) {
		t.Fatalf("expected only alt+v bound, got %q", got)
	}
	if ta.session.IsOpen() {
		t.Fatalf("expected open session cancelled by primary rebind")
	}
	if len(ta.saved) != 1 || ta.saved[0].PrimaryHotkey != "alt+v" {
		t.Fatalf("expected settings saved once, got %+v", ta.saved)
	}

	ta.applySettings(s, true)
	if len(ta.saved) != 1 {
		t.Fatalf("expected unchanged settings not to be saved again")
	}
}

func TestApplySettingsSameComboKeepsSession(t *testing.T) {
	ta := newTestApp(t, "a", "b").start()
	ta.reg.press(t, "ctrl+g")
	ta.next(t)

	s := ta.settings
	s.PrimaryHotkey = "Ctrl + G"
	ta.applySettings(s, false)

	if !ta.session.IsOpen() {
		t.Fatalf("expected session kept open when the combo is unchanged")
	}
	if got := ta.reg.combos(); !slices.Equal(got, []string{"ctrl+g", "ctrl+shift+t"}) {
		t.Fatalf("expected bindings untouched, got %q", got)
	}
}

func TestBindFailureReportedInStatus(t *testing.T) {
	ta := newTestApp(t)
	ta.reg.refuse["ctrl+g"] = true
	ctx := runApp(t, ta)

	st, err := ta.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Primary.Error == "" || st.Primary.Combo != "ctrl+g" {
		t.Fatalf("expected primary error in status, got %+v", st.Primary)
	}
	if st.Secondary.Error != "" || st.Secondary.Combo != "ctrl+shift+t" {
		t.Fatalf("expected secondary bound, got %+v", st.Secondary)
	}
}

// runApp starts Run in the background and stops it when the test ends.
func runApp(t *testing.T, ta *testApp) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = ta.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Wait for setup to finish.
	if err := ta.Do(ctx, func() {}); err != nil {
		t.Fatalf("app did not start: %v", err)
	}
	return ctx
}

func TestRunEndToEnd(t *testing.T) {
	ta := newTestApp(t, "b", "a")
	ctx := runApp(t, ta)

	ta.clip.copy("c")
	eventually(t, "clipboard push", func() bool {
		entries, _, _ := ta.List(ctx, "", 0)
		return slices.Equal(entries, []string{"c", "b", "a"})
	})

	ta.reg.press(t, "ctrl+g")
	ta.reg.press(t, "ctrl+g")
	ta.reg.press(t, "ctrl+g")
	eventually(t, "session at cursor 2", func() bool {
		v, _ := ta.Session(ctx, message.OpShow, "", 0)
		return v.State == "open" && v.Cursor == 2
	})
	ta.hook.release()
	eventually(t, "commit", func() bool { return len(ta.clip.written()) == 1 })
	if got := ta.clip.written(); got[0] != "a" {
		t.Fatalf("expected a committed, got %q", got)
	}
	eventually(t, "paste", func() bool { n, _ := ta.kb.counts(); return n == 1 })
}

func TestShutdownSavesAndReleases(t *testing.T) {
	ta := newTestApp(t, "a")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = ta.Run(ctx)
		close(done)
	}()
	if err := ta.Push(ctx, "b"); err != nil {
		t.Fatalf("push: %v", err)
	}
	cancel()
	<-done

	if got := ta.reg.combos(); len(got) != 0 {
		t.Fatalf("expected all bindings released, got %q", got)
	}
	if saved, _ := ta.store.saved(); !slices.Equal(saved, []string{"b", "a"}) {
		t.Fatalf("expected final save, got %q", saved)
	}
	if err := ta.Push(context.Background(), "late"); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after shutdown, got %v", err)
	}
}

func TestTogglesReportStopped(t *testing.T) {
	ta := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = ta.Run(ctx)
		close(done)
	}()

	on, err := ta.ToggleRunAtStartup(ctx)
	if err != nil || !on {
		t.Fatalf("expected run-at-startup on, got %v %v", on, err)
	}
	cancel()
	<-done

	if _, err := ta.ToggleRunAtStartup(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if _, err := ta.ToggleNotifications(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if !ta.settings.RunAtStartup || ta.settings.ShowNotifications {
		t.Fatalf("expected settings unchanged after shutdown, got %+v", ta.settings)
	}
}
