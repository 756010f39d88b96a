//go:build linux

package clip

import (
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	xclip "golang.design/x/clipboard"
)

const linuxPollInterval = 250 * time.Millisecond

// New returns the Linux clipboard backend. golang.design/x/clipboard talks to
// X11 directly; when it cannot (Wayland-only session, no libX11) the
// atotto/clipboard backend shells out to wl-clipboard, xclip or xsel. With
// neither available a headless no-op backend is returned.
//
// Initialisation happens here rather than in init() so that CLI sub-commands
// which never construct a Backend don't log spurious warnings.
func New() Backend {
	err := xclip.Init()
	if err == nil {
		return newPoller("Linux X11 clipboard (poll)", linuxPollInterval,
			func() (string, error) { return string(xclip.Read(xclip.FmtText)), nil },
			func(text string) error {
				xclip.Write(xclip.FmtText, []byte(text))
				return nil
			},
		)
	}
	slog.Debug("x11 clipboard unavailable", "err", err)

	if !clipboard.Unsupported {
		return newPoller("Linux clipboard via command-line tools (poll)", linuxPollInterval,
			clipboard.ReadAll, clipboard.WriteAll)
	}

	slog.Warn("clipboard unavailable, running headless")
	return newHeadless()
}
