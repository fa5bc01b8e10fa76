// Package log builds the host logger and carries the wire format programs
// use to send log records to it through log_message.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// Format names accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatAuto = "auto"
)

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// New builds the host logger. The auto format writes text to a terminal
// and JSON everywhere else.
func New(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	if format == FormatJSON || (format != FormatText && !isTerminal(w)) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	return isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
}

// Emit re-emits a program's log message on logger, tagged with the
// program name. Messages below the logger's level are dropped.
func Emit(ctx context.Context, logger *slog.Logger, program string, msg LogMessageWire) {
	if logger == nil {
		logger = slog.Default()
	}
	record := msg.Record(time.Now())
	if !logger.Enabled(ctx, record.Level) {
		return
	}
	record.AddAttrs(slog.String("program", program))
	_ = logger.Handler().Handle(ctx, record)
}
