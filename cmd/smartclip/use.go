package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"go.klb.dev/smartclip/internal/message"
)

func newUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use INDEX",
		Short: "Copy a history entry back to the clipboard",
		Long: `Writes the entry at INDEX (as printed by "smartclip list", 0 = most
recent) to the clipboard and moves it to the front of the history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid index %q", args[0])
			}
			_, err = call(&message.Message{Type: message.TypeUse, Index: n})
			return err
		},
	}
}
