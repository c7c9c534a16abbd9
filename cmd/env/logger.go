package env

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// DefaultLogLevel is the default log level for all commands
const DefaultLogLevel = "info"

// NewLogger creates a text logger writing to w, at the given level
// (debug, info, warn, error)
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level

	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
	})), nil
}
