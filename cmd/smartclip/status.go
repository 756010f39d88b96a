package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/smartclip/internal/ipc"
	"go.klb.dev/smartclip/internal/message"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running daemon's state",
		Long: `Displays the daemon's version, clipboard backend, history store, hotkey
bindings and picker state, via the IPC socket.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runStatus(v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runStatus(v *viper.Viper) error {
	resp, err := call(&message.Message{Type: message.TypeStatus})
	if err != nil {
		return err
	}
	st := resp.Status
	if st == nil {
		return fmt.Errorf("status: empty response")
	}

	if v.GetBool("json") {
		return printJSON(st)
	}
	printStatus(st)
	return nil
}

func printStatus(st *message.Status) {
	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", st.Version)
	fmt.Fprintf(w, "Transport:\tipc (%s)\n", ipc.SocketPath())
	if !st.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started:\t%s (%s)\n", st.StartedAt.UTC().Format(time.RFC3339), fmtAge(st.StartedAt))
	}
	fmt.Fprintf(w, "Clipboard:\t%s\n", st.Clipboard)
	fmt.Fprintf(w, "Store:\t%s\n", st.Store)
	fmt.Fprintf(w, "Entries:\t%d / %d\n", st.Entries, st.MaxSize)
	fmt.Fprintf(w, "Session:\t%s\n", st.Session)
	fmt.Fprintf(w, "Watchers:\t%d\n", st.Watchers)
	if st.Dropped > 0 {
		fmt.Fprintf(w, "Dropped events:\t%d\n", st.Dropped)
	}
	fmt.Fprintln(w)
	_ = w.Flush()

	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "HOTKEY\tCOMBO\tSTATE\n")
	_, _ = fmt.Fprintf(tw, "------\t-----\t-----\n")
	for _, h := range []struct {
		name string
		info message.HotkeyInfo
	}{{"primary", st.Primary}, {"secondary", st.Secondary}} {
		state := "bound"
		switch {
		case h.info.Error != "":
			state = h.info.Error
		case h.info.Combo == "" || h.info.Combo == "none":
			state = "disabled"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", h.name, h.info.Combo, state)
	}
	_ = tw.Flush()
}
