package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nthnn/ura/hostfuncs"
	"github.com/nthnn/ura/internal/abi"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// DefaultModuleName is the import module programs use for host functions.
const DefaultModuleName = "ura_host"

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// Logger receives adapter failures. Default is slog.Default().
	Logger *slog.Logger

	// ModuleName is the host module name (default: "ura_host").
	ModuleName string

	// CustomHandlers are exported next to the registry handlers. They do not
	// follow the packed request/response convention.
	CustomHandlers []CustomHandler

	// MaxRequestSize limits the size of a request read from guest memory.
	MaxRequestSize uint32
}

// CustomHandler is a host function with its own signature.
type CustomHandler struct {
	// Handler is the wazero GoModuleFunc implementation.
	Handler api.GoModuleFunc

	// Name is the exported function name.
	Name string

	// ParamTypes are the WASM parameter types.
	ParamTypes []api.ValueType

	// ResultTypes are the WASM result types.
	ResultTypes []api.ValueType
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		if name != "" {
			c.ModuleName = name
		}
	}
}

// WithMaxRequestSize sets the maximum request size read from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxRequestSize = size
	}
}

// WithCustomHandler adds a custom wazero handler.
func WithCustomHandler(h CustomHandler) AdapterOption {
	return func(c *AdapterConfig) {
		c.CustomHandlers = append(c.CustomHandlers, h)
	}
}

// WithLogger sets the logger adapter failures are reported to.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:     DefaultModuleName,
		MaxRequestSize: hostfuncs.DefaultMaxRequestSize,
		Logger:         slog.Default(),
	}
}

// RegisterWithRuntime instantiates a host module exporting every handler of
// registry plus the configured custom handlers. A nil registry exports only
// the custom handlers.
//
// Each registry handler:
//   - reads the request from guest memory using the packed i64 ptr+len format
//   - invokes the ByteHandler with the request payload
//   - allocates the response through the guest "allocate" export
//   - returns the packed ptr+len of the response, or 0 if it could not be written
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *hostfuncs.HandlerRegistry, opts ...AdapterOption) (api.Module, error) {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	if registry != nil {
		for _, name := range registry.Names() {
			funcName := name
			builder.NewFunctionBuilder().
				WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
					handleRegistryCall(ctx, mod, stack, registry, funcName, cfg)
				}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
				Export(funcName)
		}
	}

	for _, ch := range cfg.CustomHandlers {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("instantiate host module %q: %w", cfg.ModuleName, err)
	}
	return mod, nil
}

func handleRegistryCall(ctx context.Context, mod api.Module, stack []uint64, registry *hostfuncs.HandlerRegistry, name string, cfg AdapterConfig) {
	program := programName(ctx, mod)
	ctx = hostfuncs.WithProgram(ctx, program)
	logger := cfg.Logger.With("function", name, "program", program)

	requestBytes, err := readRequest(mod, stack[0], cfg.MaxRequestSize)
	if err != nil {
		logger.ErrorContext(ctx, "wazero: "+err.Error())
		stack[0] = writeResponse(ctx, logger, mod, hostfuncs.NewValidationError(err.Error()).ToJSON())
		return
	}

	responseBytes, err := registry.Invoke(ctx, name, requestBytes)
	if err != nil {
		logger.ErrorContext(ctx, "wazero: handler invocation failed", "error", err)
		stack[0] = writeResponse(ctx, logger, mod, hostfuncs.NewInternalError(err.Error()).ToJSON())
		return
	}

	stack[0] = writeResponse(ctx, logger, mod, responseBytes)
}

// readRequest copies the packed request out of guest memory.
func readRequest(mod api.Module, packed uint64, maxSize uint32) ([]byte, error) {
	if !abi.Valid(packed) {
		return nil, fmt.Errorf("request has a null pointer")
	}
	ptr, length := abi.UnpackPtrLen(packed)
	if maxSize > 0 && length > maxSize {
		return nil, fmt.Errorf("request size %d exceeds maximum %d bytes", length, maxSize)
	}
	mem := mod.Memory()
	if mem == nil {
		return nil, fmt.Errorf("guest module exports no memory")
	}
	data, ok := mem.Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("request [%d, %d) is out of guest memory range", ptr, uint64(ptr)+uint64(length))
	}
	// Read returns a view of guest memory; the handler may outlive it.
	return append([]byte(nil), data...), nil
}

// writeResponse allocates memory in the guest and writes data to it.
// Returns packed ptr+len or 0 on failure.
func writeResponse(ctx context.Context, logger *slog.Logger, mod api.Module, data []byte) uint64 {
	allocateFn := mod.ExportedFunction("allocate")
	if allocateFn == nil {
		logger.ErrorContext(ctx, "wazero: guest module missing 'allocate' export")
		return 0
	}

	results, err := allocateFn.Call(ctx, uint64(len(data)))
	if err != nil {
		logger.ErrorContext(ctx, "wazero: failed to call guest allocate", "error", err)
		return 0
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit

	if !mod.Memory().Write(ptr, data) {
		logger.ErrorContext(ctx, "wazero: failed to write response to guest memory")
		return 0
	}

	return abi.PackPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: bounded by the handler's response size
}
