// Package server serves the static site whose asm/ directory holds the
// program binaries, so an HTTP source has something to fetch from.
package server

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nthnn/ura/domain/entities"
)

// ShutdownTimeout bounds a graceful shutdown.
const ShutdownTimeout = 3 * time.Second

// ErrTraversal is returned when the served directory escapes its base.
var ErrTraversal = stdErrors.New("directory escapes base")

// Server is a static file server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	root       string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server for cfg. It fails if cfg.Dir escapes cfg.Base.
func New(cfg entities.ServerConfig, opts ...Option) (*Server, error) {
	root, err := RootDirectory(cfg.Base, cfg.Dir)
	if err != nil {
		return nil, err
	}

	address := cfg.Address
	if address == "" {
		address = "0.0.0.0"
	}

	s := &Server{logger: slog.Default(), root: root}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.Handle("/", wasmContentType(http.FileServer(http.Dir(root))))

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(address, strconv.Itoa(cfg.Port)),
		Handler:           loggingMiddleware(s.logger, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// RootDirectory joins dir to base and rejects a result outside base.
func RootDirectory(base, dir string) (string, error) {
	baseAbs, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve base %q: %w", base, err)
	}
	rootAbs, err := filepath.Abs(filepath.Join(base, filepath.Clean(dir)))
	if err != nil {
		return "", fmt.Errorf("resolve directory %q: %w", dir, err)
	}

	rel, err := filepath.Rel(baseAbs, rootAbs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrTraversal, dir)
	}
	return rootAbs, nil
}

// Root returns the served directory.
func (s *Server) Root() string {
	return s.root
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the server's handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	s.logger.InfoContext(ctx, "serving static files", "root", s.root, "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if stdErrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.ErrorContext(ctx, "error shutting down HTTP server", "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "server stopped")
	return nil
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}
