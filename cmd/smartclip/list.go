package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/smartclip/internal/ipc"
	"go.klb.dev/smartclip/internal/message"
	"go.klb.dev/smartclip/internal/store"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the history, most recent first",
		Long: `Prints the clipboard history, most recent entry first, with the index
"smartclip use" expects.

If no daemon is running the history is read straight from the store.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runList(v) },
	}

	f := cmd.Flags()
	f.String("filter", "", "only entries containing this text (case-insensitive)")
	f.Int("limit", 0, "print at most this many entries (0 = all)")
	f.Int("width", 80, "truncate entries to this many characters (0 = no limit)")
	f.Bool("json", false, "output raw JSON")
	f.Bool("full", false, "print entries verbatim, separated by NUL bytes")
	addStoreFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runList(v *viper.Viper) error {
	filter := v.GetString("filter")
	limit := v.GetInt("limit")

	var entries []string
	if ipc.IsRunning() {
		resp, err := ipc.Call(&message.Message{Type: message.TypeList, Filter: filter, Limit: limit})
		if err != nil {
			return err
		}
		entries = resp.Entries
	} else {
		slog.Debug("no daemon, reading the store directly")
		all, err := loadStore(v)
		if err != nil {
			return err
		}
		entries = filterEntries(all, filter, limit)
	}

	switch {
	case v.GetBool("json"):
		if entries == nil {
			entries = []string{}
		}
		return printJSON(entries)
	case v.GetBool("full"):
		for _, e := range entries {
			fmt.Printf("%s\x00", e)
		}
	default:
		printEntries(entries, v.GetInt("width"))
	}
	return nil
}

func loadStore(v *viper.Viper) ([]string, error) {
	p, err := store.Open(storeOptions(v))
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}
	defer p.Close()
	return p.Load()
}

func filterEntries(all []string, filter string, limit int) []string {
	needle := strings.ToLower(filter)
	var out []string
	for _, e := range all {
		if needle != "" && !strings.Contains(strings.ToLower(e), needle) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
