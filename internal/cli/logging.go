package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// newLogger builds the process logger: charmbracelet/log behind slog, writing to w.
// Stdout belongs to the MCP transport, so w is normally stderr.
func newLogger(w io.Writer) (*slog.Logger, *log.Logger) {
	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           log.InfoLevel,
	})
	return slog.New(handler), handler
}

// setLevel applies a textual level. An empty value leaves the level unchanged.
func setLevel(handler *log.Logger, level string) error {
	if strings.TrimSpace(level) == "" {
		return nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return err
	}
	handler.SetLevel(lvl)
	return nil
}
