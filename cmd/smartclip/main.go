// smartclip: clipboard history with a hold-and-release picker.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/smartclip/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "smartclip",
		Short: "Clipboard history with a global hold-and-release picker",
		Long: `smartclip records every text you copy into a bounded, deduplicated
history. Hold the primary hotkey (default Ctrl+G), tap the trigger key to
cycle back through earlier entries, and let go of the modifier to paste the
highlighted one.

Run "smartclip run" to start the daemon. The other commands talk to it over
a local socket: list, push, use, status, watch, session, settings.

Config file search order (first found wins):
  /etc/smartclip/smartclip.toml
  $XDG_CONFIG_HOME/smartclip/smartclip.toml (or ~/.config/smartclip)
  path supplied via --config

All flags can be set via SMARTCLIP_<FLAG> env vars (dashes become
underscores) or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newListCmd(),
		newPushCmd(),
		newUseCmd(),
		newStatusCmd(),
		newWatchCmd(),
		newSessionCmd(),
		newSettingsCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("smartclip %s\n", Version)
		},
	}
}

// resolveLogging picks format and level once flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) (logging.Format, string) {
	format := logging.ParseFormat(formatStr)
	if levelStr == "" {
		if interactive {
			levelStr = "debug"
		} else {
			levelStr = "info"
		}
	}
	return format, levelStr
}
