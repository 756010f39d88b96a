package clip

import (
	"log/slog"
	"sync"
	"time"
)

// poller turns a read/write pair into a Backend by sampling the clipboard on
// a ticker and signalling when the text differs from the last sample.
type poller struct {
	name  string
	read  func() (string, error)
	write func(string) error

	watchCh chan struct{}
	done    chan struct{}
	once    sync.Once
	last    string
}

func newPoller(name string, interval time.Duration, read func() (string, error), write func(string) error) *poller {
	p := &poller{
		name:    name,
		read:    read,
		write:   write,
		watchCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	// The text present at startup is not a change.
	p.last, _ = read()
	go p.poll(interval)
	return p
}

func (p *poller) poll(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	failing := false
	for {
		select {
		case <-p.done:
			return
		case <-t.C:
			text, err := p.read()
			if err != nil {
				if !failing {
					slog.Debug("clipboard poll failed", "backend", p.name, "err", err)
				}
				failing = true
				continue
			}
			failing = false
			if text != p.last {
				p.last = text
				signal(p.watchCh)
			}
		}
	}
}

func (p *poller) Name() string                { return p.name }
func (p *poller) ReadText() (string, error)   { return p.read() }
func (p *poller) WriteText(text string) error { return p.write(text) }
func (p *poller) Watch() <-chan struct{}      { return p.watchCh }
func (p *poller) Close()                      { p.once.Do(func() { close(p.done) }) }
