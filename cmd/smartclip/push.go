package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"go.klb.dev/smartclip/internal/message"
)

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push [TEXT...]",
		Short: "Add text to the history (like pbcopy, without touching the clipboard)",
		Long: `Records TEXT as the most recent history entry. With no arguments the
text is read from stdin. Empty text is ignored.`,
		RunE: func(_ *cobra.Command, args []string) error {
			var text string
			if len(args) > 0 {
				text = strings.Join(args, " ")
			} else {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}
			if text == "" {
				return nil
			}
			_, err := call(&message.Message{Type: message.TypePush, Text: text})
			return err
		},
	}
}
