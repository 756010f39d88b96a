package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/smartclip/internal/ipc"
	"go.klb.dev/smartclip/internal/message"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the history every time it changes",
		Long: `Subscribes to the daemon and prints the history whenever it changes,
starting with the current one. Runs until interrupted or the daemon exits.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runWatch(v) },
	}

	f := cmd.Flags()
	f.Int("limit", 10, "entries to print per update (0 = all)")
	f.Int("width", 80, "truncate entries to this many characters (0 = no limit)")
	f.Bool("json", false, "print each update as one JSON line")
	addConfigFlag(cmd)

	return cmd
}

func runWatch(v *viper.Viper) error {
	wc, err := ipc.Dial()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = wc.Close()
	}()

	if err := wc.WriteMsg(&message.Message{Type: message.TypeWatch}); err != nil {
		return fmt.Errorf("ipc write: %w", err)
	}

	limit := v.GetInt("limit")
	for {
		msg, err := wc.ReadMsg()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("watch ended: %w", err)
		}
		if err := msg.Err(); err != nil {
			return err
		}
		if msg.Type != message.TypeHistory {
			continue
		}

		entries := msg.Entries
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
		if v.GetBool("json") {
			if err := printJSONLine(msg.Total, entries); err != nil {
				return err
			}
			continue
		}
		fmt.Printf("-- %d entries --\n", msg.Total)
		printEntries(entries, v.GetInt("width"))
	}
}

func printJSONLine(total int, entries []string) error {
	if entries == nil {
		entries = []string{}
	}
	b, err := (&message.Message{Type: message.TypeHistory, Entries: entries, Total: total}).Encode()
	if err != nil {
		return err
	}
	_, err = fmt.Println(string(b))
	return err
}
