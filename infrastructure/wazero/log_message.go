package wazero

import (
	"context"
	"log/slog"

	"github.com/nthnn/ura/hostfuncs"
	"github.com/nthnn/ura/log"
	"github.com/tetratelabs/wazero/api"
)

// LogMessageHandler exports log_message(i64): the packed payload is a
// log.LogMessageWire document, re-emitted on logger tagged with the program
// name. Malformed payloads are reported and dropped; the guest never traps.
func LogMessageHandler(logger *slog.Logger) CustomHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return CustomHandler{
		Name: "log_message",
		Handler: api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			program := programName(ctx, mod)

			data, err := readRequest(mod, stack[0], hostfuncs.DefaultMaxRequestSize)
			if err != nil {
				logger.WarnContext(ctx, "wazero: dropped log message", "program", program, "error", err)
				return
			}

			msg, err := log.DecodeMessage(data)
			if err != nil {
				logger.WarnContext(ctx, "wazero: dropped log message", "program", program, "error", err)
				return
			}
			log.Emit(ctx, logger, program, msg)
		}),
		ParamTypes:  []api.ValueType{api.ValueTypeI64},
		ResultTypes: []api.ValueType{},
	}
}
