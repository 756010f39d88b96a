package hub

import (
	"context"
	"log/slog"
	"unicode/utf8"
)

// LogText logs a history event at INFO (reason, size) and DEBUG (a preview
// of up to 120 characters).
func LogText(event string, reason Reason, text string, entries int) {
	slog.Info(event, "reason", reason, "bytes", len(text), "entries", entries)

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	slog.Debug("clip text", "preview", Preview(text, 120))
}

// Preview shortens text to at most n runes, marking the cut with "…".
func Preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	r := []rune(text)
	return string(r[:n]) + "…"
}
