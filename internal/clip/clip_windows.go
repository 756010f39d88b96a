//go:build windows

package clip

// #cgo LDFLAGS: -luser32
//
// #include <windows.h>
// #include <stdlib.h>
//
// static HWND smartclip_create_listener_window();
// static void smartclip_pump_messages(HWND hwnd, int* changed);
//
// static LRESULT CALLBACK smartclip_wnd_proc(HWND hwnd, UINT msg, WPARAM wp, LPARAM lp) {
//     if (msg == WM_CLIPBOARDUPDATE) {
//         PostMessage(hwnd, WM_USER + 1, 0, 0);
//         return 0;
//     }
//     return DefWindowProc(hwnd, msg, wp, lp);
// }
//
// static HWND smartclip_create_listener_window() {
//     WNDCLASS wc = {0};
//     wc.lpfnWndProc   = smartclip_wnd_proc;
//     wc.hInstance     = GetModuleHandle(NULL);
//     wc.lpszClassName = "SmartclipClipboard";
//     RegisterClass(&wc);
//     HWND hwnd = CreateWindowEx(0, "SmartclipClipboard", NULL, 0,
//         0, 0, 0, 0, HWND_MESSAGE, NULL, GetModuleHandle(NULL), NULL);
//     AddClipboardFormatListener(hwnd);
//     return hwnd;
// }
//
// static void smartclip_pump_messages(HWND hwnd, int* changed) {
//     MSG msg;
//     *changed = 0;
//     while (PeekMessage(&msg, hwnd, 0, 0, PM_REMOVE)) {
//         if (msg.message == WM_USER + 1) { *changed = 1; }
//         TranslateMessage(&msg);
//         DispatchMessage(&msg);
//     }
// }
import "C"

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.design/x/clipboard"
)

const windowsPumpInterval = 50 * time.Millisecond

type windowsBackend struct {
	watchCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New returns the Windows clipboard backend using AddClipboardFormatListener.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return newHeadless()
	}
	b := &windowsBackend{
		watchCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go b.pump()
	return b
}

func (b *windowsBackend) Name() string { return "Windows clipboard" }

// pump owns the listener window. Window messages are delivered to the thread
// that created the window, so the goroutine stays on one OS thread.
func (b *windowsBackend) pump() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hwnd := C.smartclip_create_listener_window()
	t := time.NewTicker(windowsPumpInterval)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			var changed C.int
			C.smartclip_pump_messages(hwnd, &changed)
			if changed != 0 {
				signal(b.watchCh)
			}
		}
	}
}

func (b *windowsBackend) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (b *windowsBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *windowsBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *windowsBackend) Close()                 { b.once.Do(func() { close(b.done) }) }
