package policy

import (
	"context"
	"log/slog"

	"github.com/nthnn/ura/domain/ports"
)

var (
	_ ports.DenialHandler = (*LogDenialHandler)(nil)
	_ ports.DenialHandler = (*NopDenialHandler)(nil)
)

// LogDenialHandler logs denials at warn level.
type LogDenialHandler struct {
	Logger *slog.Logger
}

func (h *LogDenialHandler) OnDenial(kind string, request any, reason string) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, "permission denied",
		slog.String("kind", kind),
		slog.Any("request", request),
		slog.String("reason", reason))
}

// NopDenialHandler does nothing.
type NopDenialHandler struct{}

func (h *NopDenialHandler) OnDenial(kind string, request any, reason string) {}
