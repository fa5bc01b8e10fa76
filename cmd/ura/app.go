package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/domain/policy"
	"github.com/nthnn/ura/domain/ports"
	"github.com/nthnn/ura/host"
	"github.com/nthnn/ura/hostfuncs"
	"github.com/nthnn/ura/infrastructure/session"
	"github.com/nthnn/ura/infrastructure/source"
)

// app holds everything a command needs to load programs.
type app struct {
	bridge *host.Bridge
	loader *host.Loader
	source ports.BinarySource
	store  ports.SessionStore
	logger *slog.Logger
}

type appIO struct {
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	observer host.Observer
}

func newApp(ctx context.Context, cfg *entities.Config, logger *slog.Logger, aio appIO) (*app, error) {
	var store ports.SessionStore
	if cfg.Session.Path != "" {
		store = session.NewFileStore(session.WithPath(cfg.Session.Path))
	} else {
		store = session.NewMemoryStore()
	}

	allow, err := policy.NewPolicy(cfg.API.AllowHosts,
		policy.WithDenialHandler(&policy.LogDenialHandler{Logger: logger}))
	if err != nil {
		return nil, fmt.Errorf("invalid api.allow_hosts: %w", err)
	}

	registry, err := hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(
			hostfuncs.PanicRecoveryMiddleware(),
			hostfuncs.LoggingMiddleware(logger),
		),
		hostfuncs.WithBundle(hostfuncs.DefaultBundles(store,
			hostfuncs.WithHTTPBaseURL(apiBase(cfg)),
			hostfuncs.WithHTTPRequestTimeout(cfg.API.Timeout()),
			hostfuncs.WithHTTPMaxBodySize(int(cfg.API.MaxBodySize)),
			hostfuncs.WithHTTPPolicy(allow),
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create host functions: %w", err)
	}

	src, err := source.New(cfg.Source,
		source.WithMaxSize(cfg.MaxBinarySize),
		source.WithTimeout(cfg.FetchTimeout()),
	)
	if err != nil {
		return nil, err
	}

	opts := []host.BridgeOption{
		host.WithHostFunctions(registry),
		host.WithBridgeLogger(logger),
		host.WithArgs(cfg.Program.Args...),
		host.WithEnv(cfg.Program.Env),
		host.WithCloseOnContextDone(true),
		host.WithStdout(aio.stdout),
		host.WithStderr(aio.stderr),
	}
	if aio.stdin != nil {
		opts = append(opts, host.WithStdin(aio.stdin))
	}
	if cfg.Program.MountDir != "" {
		opts = append(opts, host.WithFS(os.DirFS(cfg.Program.MountDir)))
	}

	bridge, err := host.NewBridge(ctx, opts...)
	if err != nil {
		return nil, err
	}

	loader := host.NewLoader(src,
		host.WithEntryPoint(cfg.EntryPoint),
		host.WithLogger(logger),
		host.WithFetchTimeout(cfg.FetchTimeout()),
		host.WithObserver(aio.observer),
	)

	return &app{bridge: bridge, loader: loader, source: src, store: store, logger: logger}, nil
}

// apiBase is the configured API origin, or the source itself when that is
// an HTTP origin, the way a page's relative fetches go back to its server.
func apiBase(cfg *entities.Config) string {
	if cfg.API.BaseURL != "" {
		return cfg.API.BaseURL
	}
	if strings.HasPrefix(cfg.Source, "http://") || strings.HasPrefix(cfg.Source, "https://") {
		return cfg.Source
	}
	return ""
}

// programs returns names, or the source catalog when names is empty.
func (a *app) programs(ctx context.Context, names []string) ([]string, error) {
	if len(names) > 0 {
		return names, nil
	}
	catalog, ok := a.source.(ports.Catalog)
	if !ok {
		return nil, fmt.Errorf("source cannot list programs; name them on the command line")
	}
	return catalog.List(ctx)
}

func (a *app) Close(ctx context.Context) error {
	return a.bridge.Close(ctx)
}
