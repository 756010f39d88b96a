package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"go.klb.dev/smartclip/internal/hub"
	"go.klb.dev/smartclip/internal/message"
	"go.klb.dev/smartclip/internal/wire"
)

const watchBuffer = 16

// DefaultRequestTimeout bounds the wait for a client's request line.
const DefaultRequestTimeout = 10 * time.Second

var watchSeq atomic.Uint64

// Serve accepts IPC connections on ln until it is closed.
func (a *App) Serve(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go a.handleConn(ctx, conn)
	}
}

func (a *App) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)

	wc.SetReadDeadline(a.requestTimeout)
	msg, err := wc.ReadMsg()
	if err != nil {
		slog.Debug("ipc request not read", "err", err)
		return
	}
	slog.Debug("ipc request", "type", msg.Type)

	if msg.Type == message.TypeWatch {
		wc.SetReadDeadline(0)
		a.watch(ctx, wc)
		return
	}
	_ = wc.WriteMsg(a.dispatch(ctx, msg))
}

func (a *App) dispatch(ctx context.Context, msg *message.Message) *message.Message {
	switch msg.Type {
	case message.TypeList:
		entries, total, err := a.List(ctx, msg.Filter, msg.Limit)
		if err != nil {
			return message.Errorf("%v", err)
		}
		return &message.Message{Type: message.TypeHistory, Entries: entries, Total: total}

	case message.TypePush:
		if err := a.Push(ctx, msg.Text); err != nil {
			return message.Errorf("%v", err)
		}
		return message.OK()

	case message.TypeUse:
		if err := a.Use(ctx, msg.Index); err != nil {
			return message.Errorf("%v", err)
		}
		return message.OK()

	case message.TypeStatus:
		st, err := a.Status(ctx)
		if err != nil {
			return message.Errorf("%v", err)
		}
		return &message.Message{Type: message.TypeStatusResponse, Status: &st}

	case message.TypeSession:
		view, err := a.Session(ctx, msg.Op, msg.Filter, msg.Delta)
		if err != nil {
			return message.Errorf("%v", err)
		}
		return &message.Message{Type: message.TypeSessionView, View: &view}

	case message.TypeSettings:
		s, err := a.Settings(ctx)
		if msg.Key != "" {
			s, err = a.SetSetting(ctx, msg.Key, msg.Value)
		}
		if err != nil {
			return message.Errorf("%v", err)
		}
		resp := message.OK()
		resp.Settings = &s
		return resp

	default:
		return message.Errorf("unknown request type %q", msg.Type)
	}
}

// watcher streams hub events to one WATCH connection.
type watcher struct {
	id string
	ch chan hub.Event
}

func (w *watcher) ID() string { return w.id }

func (w *watcher) Send(ev hub.Event) {
	select {
	case w.ch <- ev:
	default:
		slog.Warn("watch client too slow, dropping update", "watcher", w.id)
	}
}

// watch writes a HISTORY message per history change until the client goes
// away or ctx ends.
func (a *App) watch(ctx context.Context, wc *wire.Conn) {
	w := &watcher{
		id: fmt.Sprintf("ipc:watch:%d", watchSeq.Add(1)),
		ch: make(chan hub.Event, watchBuffer),
	}
	a.hub.Register(w)
	defer a.hub.Unregister(w)

	// The client never writes after WATCH; a read returning means it hung up.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, err := wc.ReadMsg(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-w.ch:
			err := wc.WriteMsg(&message.Message{
				Type:    message.TypeHistory,
				Entries: ev.Entries,
				Total:   len(ev.Entries),
			})
			if err != nil {
				return
			}
		case <-gone:
			return
		case <-ctx.Done():
			return
		case <-a.done:
			return
		}
	}
}
