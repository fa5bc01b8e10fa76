package host

import (
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/hostfuncs"
)

// Observer receives a StageEvent at the start and end of every stage.
// It is called synchronously from the loading goroutine.
type Observer func(entities.StageEvent)

type loaderConfig struct {
	logger       *slog.Logger
	observer     Observer
	entryPoint   string
	fetchTimeout time.Duration
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		entryPoint: "_start",
		logger:     slog.Default(),
	}
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderConfig)

// WithEntryPoint sets the export called after instantiation.
// Default is "_start".
func WithEntryPoint(name string) LoaderOption {
	return func(c *loaderConfig) {
		if name != "" {
			c.entryPoint = name
		}
	}
}

// WithObserver registers fn to receive stage events.
func WithObserver(fn Observer) LoaderOption {
	return func(c *loaderConfig) {
		c.observer = fn
	}
}

// WithLogger sets the logger of the loader.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(c *loaderConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFetchTimeout bounds the fetch stage. Zero leaves it bounded only by
// the caller's context.
func WithFetchTimeout(d time.Duration) LoaderOption {
	return func(c *loaderConfig) {
		c.fetchTimeout = d
	}
}

type bridgeConfig struct {
	stdout             io.Writer
	stderr             io.Writer
	stdin              io.Reader
	fsys               fs.FS
	registry           *hostfuncs.HandlerRegistry
	logger             *slog.Logger
	env                map[string]string
	moduleName         string
	args               []string
	closeOnContextDone bool
}

func defaultBridgeConfig() bridgeConfig {
	return bridgeConfig{
		moduleName: "ura_host",
		logger:     slog.Default(),
	}
}

// BridgeOption configures a Bridge.
type BridgeOption func(*bridgeConfig)

// WithHostFunctions sets the registry exported by the host module.
func WithHostFunctions(registry *hostfuncs.HandlerRegistry) BridgeOption {
	return func(c *bridgeConfig) {
		c.registry = registry
	}
}

// WithStdout sets the writer programs see as standard output.
func WithStdout(w io.Writer) BridgeOption {
	return func(c *bridgeConfig) {
		c.stdout = w
	}
}

// WithStderr sets the writer programs see as standard error.
func WithStderr(w io.Writer) BridgeOption {
	return func(c *bridgeConfig) {
		c.stderr = w
	}
}

// WithStdin sets the reader programs see as standard input.
func WithStdin(r io.Reader) BridgeOption {
	return func(c *bridgeConfig) {
		c.stdin = r
	}
}

// WithArgs sets the arguments following argv[0], which is always the
// program name.
func WithArgs(args ...string) BridgeOption {
	return func(c *bridgeConfig) {
		c.args = append([]string(nil), args...)
	}
}

// WithEnv sets the environment of every program.
func WithEnv(env map[string]string) BridgeOption {
	return func(c *bridgeConfig) {
		c.env = make(map[string]string, len(env))
		for k, v := range env {
			c.env[k] = v
		}
	}
}

// WithFS exposes fsys to programs as the WASI root directory.
func WithFS(fsys fs.FS) BridgeOption {
	return func(c *bridgeConfig) {
		c.fsys = fsys
	}
}

// WithCloseOnContextDone makes a running program stop when the context of
// its load is done. Off by default: a started entry point runs to completion.
func WithCloseOnContextDone(enabled bool) BridgeOption {
	return func(c *bridgeConfig) {
		c.closeOnContextDone = enabled
	}
}

// WithHostModuleName sets the import module name of the host functions.
func WithHostModuleName(name string) BridgeOption {
	return func(c *bridgeConfig) {
		if name != "" {
			c.moduleName = name
		}
	}
}

// WithBridgeLogger sets the logger receiving program log messages and
// host function failures.
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(c *bridgeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}
