// Package ipc provides the local control channel between a running
// smartclip daemon and the CLI tools or an external picker.
//
// The channel is a Unix domain socket (a named pipe on Windows) carrying the
// newline-delimited JSON protocol from package message. The daemon listens;
// CLI sub-commands check for it and fall back to reading the history store
// directly where that makes sense.
package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"

	"go.klb.dev/smartclip/internal/message"
	"go.klb.dev/smartclip/internal/wire"
)

// ErrNotRunning is returned when no daemon is listening on the socket.
var ErrNotRunning = errors.New("smartclip daemon is not running")

// SocketPath returns the platform-appropriate path for the IPC socket.
//
//   - Linux:   $XDG_RUNTIME_DIR/smartclip.sock, else $TMPDIR/smartclip.sock
//   - macOS:   $TMPDIR/smartclip.sock
//   - Windows: \\.\pipe\smartclip
//
// $SMARTCLIP_SOCKET overrides all of these.
func SocketPath() string {
	if s := os.Getenv("SMARTCLIP_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a daemon appears to be listening on the IPC
// socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := dialIPC(SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on the IPC socket path, removing any stale
// socket left by a crashed run. It refuses to start if another daemon
// still answers on the path.
func Listen() (net.Listener, error) {
	path := SocketPath()
	if IsRunning() {
		return nil, fmt.Errorf("another smartclip daemon is listening on %s", path)
	}
	removeStale(path)
	return listenIPC(path)
}

// Dial connects to the daemon.
func Dial() (*wire.Conn, error) {
	c, err := dialIPC(SocketPath())
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrNotRunning, SocketPath(), err)
	}
	return wire.New(c), nil
}

// Call sends one request and returns the daemon's response. An ERROR
// response is returned as an error.
func Call(req *message.Message) (*message.Message, error) {
	wc, err := Dial()
	if err != nil {
		return nil, err
	}
	defer wc.Close()
	return Exchange(wc, req)
}

// Exchange writes req on an open connection and reads one response.
func Exchange(wc *wire.Conn, req *message.Message) (*message.Message, error) {
	if err := wc.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("ipc write: %w", err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("ipc read: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}
