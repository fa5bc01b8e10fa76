package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/nthnn/ura/log"
)

// LogHandler is a slog.Handler that forwards records to the host logger
// through log_message. The host applies its own level on top of Level.
type LogHandler struct {
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewLogHandler returns a handler dropping records below level.
// A nil level means info.
func NewLogHandler(level slog.Leveler) *LogHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &LogHandler{level: level}
}

// Enabled implements slog.Handler.
func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	r := slog.NewRecord(record.Time, record.Level, record.Message, 0)
	r.AddAttrs(h.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(h.qualify(a))
		return true
	})

	data, err := json.Marshal(log.FromRecord(r))
	if err != nil {
		fmt.Fprintf(os.Stderr, "guest: failed to encode log message: %v, original: %s\n", err, record.Message)
		return nil
	}
	sendLog(data)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		c.attrs = append(c.attrs, h.qualify(a))
	}
	return &c
}

// WithGroup implements slog.Handler. Groups flatten into dotted keys.
func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group = h.qualifyKey(name)
	return &c
}

func (h *LogHandler) qualify(a slog.Attr) slog.Attr {
	a.Key = h.qualifyKey(a.Key)
	return a
}

func (h *LogHandler) qualifyKey(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

// Logger returns a logger writing to the host at level.
func Logger(level slog.Leveler) *slog.Logger {
	return slog.New(NewLogHandler(level))
}
