package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nthnn/ura/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSite(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "public", "asm"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "public", "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "public", "asm", "main.wasm"), []byte{0x00, 0x61, 0x73, 0x6d}, 0o644))
	return base
}

func TestRootDirectory(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name    string
		dir     string
		wantErr bool
	}{
		{name: "child", dir: "public"},
		{name: "base itself", dir: "."},
		{name: "cleaned inside", dir: "public/../public"},
		{name: "parent", dir: "..", wantErr: true},
		{name: "sibling", dir: "../other", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := RootDirectory(base, tt.dir)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrTraversal)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(root))
		})
	}
}

func TestNew_RejectsTraversal(t *testing.T) {
	_, err := New(entities.ServerConfig{Base: t.TempDir(), Dir: "../etc"})
	require.ErrorIs(t, err, ErrTraversal)
}

func TestHandler(t *testing.T) {
	base := writeSite(t)
	var logs bytes.Buffer
	srv, err := New(entities.ServerConfig{Base: base, Dir: "public", Port: 8080},
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", srv.Addr())
	assert.Equal(t, filepath.Join(base, "public"), srv.Root())

	t.Run("wasm content type", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/asm/main.wasm", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/wasm", rec.Header().Get("Content-Type"))
		assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d}, rec.Body.Bytes())
	})

	t.Run("index", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<html>")
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/asm/nope.wasm", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, logs.String(), "status=404")
		assert.Contains(t, logs.String(), "remote=203.0.113.9")
	})
}

func TestServe_GracefulShutdown(t *testing.T) {
	base := writeSite(t)
	srv, err := New(entities.ServerConfig{Base: base, Dir: "public"}, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/asm/main.wasm")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
