package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.klb.dev/smartclip/internal/hub"
	"go.klb.dev/smartclip/internal/ipc"
	"go.klb.dev/smartclip/internal/message"
)

// call sends req to the running daemon.
func call(req *message.Message) (*message.Message, error) {
	if !ipc.IsRunning() {
		return nil, fmt.Errorf("%w (start it with \"smartclip run\")", ipc.ErrNotRunning)
	}
	return ipc.Call(req)
}

// printJSON writes v indented to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printEntries prints one line per entry, prefixed with its index. Multi-line
// entries are folded onto one line.
func printEntries(entries []string, width int) {
	for i, e := range entries {
		line := strings.Join(strings.Fields(e), " ")
		if width > 0 {
			line = hub.Preview(line, width)
		}
		fmt.Printf("%4d  %s\n", i, line)
	}
}
