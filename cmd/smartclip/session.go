package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/smartclip/internal/hub"
	"go.klb.dev/smartclip/internal/message"
)

func newSessionCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "session [show|open|filter TEXT|cycle|up|down|move N|accept|cancel]",
		Short: "Drive the history picker",
		Long: `Operates the same picker the primary hotkey opens, for scripts and
external presenters. Every operation prints the resulting view; the
highlighted entry is marked with ">".

  show         print the picker (default)
  open         open the picker over the current history
  filter TEXT  show only entries containing TEXT (empty clears)
  cycle        move to the next entry, wrapping
  up, down     move the cursor by one
  move N       move the cursor by N
  accept       paste the highlighted entry and close
  cancel       close without pasting`,
		Args:    cobra.MaximumNArgs(2),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runSession(v, args) },
	}

	f := cmd.Flags()
	f.Int("width", 80, "truncate entries to this many characters (0 = no limit)")
	f.Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

// sessionRequest maps command-line words to a SESSION request.
func sessionRequest(args []string) (*message.Message, error) {
	req := &message.Message{Type: message.TypeSession, Op: message.OpShow}
	if len(args) == 0 {
		return req, nil
	}
	arg := ""
	if len(args) == 2 {
		arg = args[1]
	}
	switch args[0] {
	case "show", "open", "cycle", "accept", "cancel":
		req.Op = message.SessionOp(args[0])
	case "filter":
		req.Op, req.Filter = message.OpFilter, arg
	case "up":
		req.Op, req.Delta = message.OpMove, -1
	case "down":
		req.Op, req.Delta = message.OpMove, 1
	case "move":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("move: invalid step %q", arg)
		}
		req.Op, req.Delta = message.OpMove, n
	default:
		return nil, fmt.Errorf("unknown session operation %q", args[0])
	}
	if len(args) == 2 && req.Op != message.OpFilter && args[0] != "move" {
		return nil, fmt.Errorf("%s takes no argument", args[0])
	}
	return req, nil
}

func runSession(v *viper.Viper, args []string) error {
	req, err := sessionRequest(args)
	if err != nil {
		return err
	}
	resp, err := call(req)
	if err != nil {
		return err
	}
	if resp.View == nil {
		return fmt.Errorf("session: empty response")
	}
	if v.GetBool("json") {
		return printJSON(resp.View)
	}
	fmt.Print(formatView(*resp.View, v.GetInt("width")))
	return nil
}

func formatView(view message.SessionView, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "state: %s", view.State)
	if view.Filter != "" {
		fmt.Fprintf(&b, "  filter: %q", view.Filter)
	}
	b.WriteByte('\n')
	for i, e := range view.Entries {
		marker := " "
		if i == view.Cursor {
			marker = ">"
		}
		line := strings.Join(strings.Fields(e), " ")
		if width > 0 {
			line = hub.Preview(line, width)
		}
		fmt.Fprintf(&b, "%s %4d  %s\n", marker, i, line)
	}
	return b.String()
}
