// Package clip provides plain-text access to the system clipboard and
// synthetic paste/typing keystrokes. Build constraints select the
// implementation:
//
//	clip_darwin.go   macOS via golang.design/x/clipboard + cgo changeCount
//	clip_windows.go  Windows via golang.design/x/clipboard + AddClipboardFormatListener
//	clip_linux.go    Linux via golang.design/x/clipboard, atotto/clipboard fallback, polling
//	clip_other.go    headless stub
package clip

import "errors"

// ErrUnsupported is returned by keyboard emulation on platforms or sessions
// where no synthetic input method is available.
var ErrUnsupported = errors.New("not supported on this platform")

// Backend is the interface that all platform clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the current clipboard text, or "" if the clipboard is
	// empty or holds no text.
	ReadText() (string, error)

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error

	// Watch returns a channel that receives a signal whenever the clipboard
	// changes. Signals coalesce; the channel is never closed. The caller
	// should call ReadText when it receives from the channel.
	Watch() <-chan struct{}

	// Close releases any resources held by the backend.
	Close()
}

// Keyboard emulates keystrokes into the focused window.
type Keyboard interface {
	// Paste sends the platform paste shortcut.
	Paste() error

	// Type sends text as individual keystrokes, for fields that refuse paste.
	Type(text string) error
}

// signal performs a non-blocking, coalescing send.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
