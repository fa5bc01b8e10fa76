package hostfuncs

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next ByteHandler) ByteHandler

// PanicRecoveryMiddleware catches panics and converts them to an
// INTERNAL_ERROR response instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = NewPanicError(r).ToJSON()
					err = nil
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware logs every host function invocation at debug level and
// every Go error at error level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			funcName := "unknown"
			program := ""
			if hc, ok := ctx.(HostContext); ok {
				funcName = hc.FunctionName()
				program = hc.ProgramName()
			}
			start := time.Now()
			resp, err := next(ctx, payload)
			if err != nil {
				logger.ErrorContext(ctx, "host function failed",
					"function", funcName, "program", program, "error", err)
				return resp, err
			}
			logger.DebugContext(ctx, "host function completed",
				"function", funcName, "program", program,
				"request_bytes", len(payload), "response_bytes", len(resp),
				"duration", time.Since(start))
			return resp, nil
		}
	}
}
