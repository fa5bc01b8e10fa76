package host

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"

	"github.com/nthnn/ura/hostfuncs"
	adapter "github.com/nthnn/ura/infrastructure/wazero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// ImportObject is what a load instantiates against: a runtime holding the
// imported modules and the per-instance configuration.
type ImportObject interface {
	// Runtime compiles and instantiates modules.
	Runtime() wazero.Runtime

	// ModuleConfig returns the configuration of a new instance of program.
	// The loader sets the instance name.
	ModuleConfig(program string) wazero.ModuleConfig
}

// Bridge is the ImportObject of this host: a wazero runtime with WASI
// preview1 and the host function module.
type Bridge struct {
	runtime wazero.Runtime
	config  bridgeConfig
}

var _ ImportObject = (*Bridge)(nil)

// NewBridge creates a runtime and instantiates the imports into it.
func NewBridge(ctx context.Context, opts ...BridgeOption) (*Bridge, error) {
	cfg := defaultBridgeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.registry == nil {
		reg, err := hostfuncs.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to create default registry: %w", err)
		}
		cfg.registry = reg
	}

	rt := wazero.NewRuntimeWithConfig(ctx,
		wazero.NewRuntimeConfig().WithCloseOnContextDone(cfg.closeOnContextDone))

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	if _, err := adapter.RegisterWithRuntime(ctx, rt, cfg.registry,
		adapter.WithModuleName(cfg.moduleName),
		adapter.WithLogger(cfg.logger),
		adapter.WithCustomHandler(adapter.LogMessageHandler(cfg.logger)),
	); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return &Bridge{runtime: rt, config: cfg}, nil
}

// Runtime implements ImportObject.
func (b *Bridge) Runtime() wazero.Runtime {
	return b.runtime
}

// ModuleConfig implements ImportObject. Start functions are disabled so
// instantiation never runs guest code; the loader calls the entry point.
func (b *Bridge) ModuleConfig(program string) wazero.ModuleConfig {
	mc := wazero.NewModuleConfig().
		WithStartFunctions().
		WithArgs(append([]string{program}, b.config.args...)...).
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader)

	if b.config.stdout != nil {
		mc = mc.WithStdout(b.config.stdout)
	}
	if b.config.stderr != nil {
		mc = mc.WithStderr(b.config.stderr)
	}
	if b.config.stdin != nil {
		mc = mc.WithStdin(b.config.stdin)
	}
	if b.config.fsys != nil {
		mc = mc.WithFS(b.config.fsys)
	}

	keys := make([]string, 0, len(b.config.env))
	for k := range b.config.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		mc = mc.WithEnv(k, b.config.env[k])
	}
	return mc
}

// HostFunctions returns the names exported by the host module.
func (b *Bridge) HostFunctions() []string {
	return append(b.config.registry.Names(), "log_message")
}

// HostModuleName returns the import module name of the host functions.
func (b *Bridge) HostModuleName() string {
	return b.config.moduleName
}

// Close closes the runtime and every instance still open in it.
func (b *Bridge) Close(ctx context.Context) error {
	return b.runtime.Close(ctx)
}
