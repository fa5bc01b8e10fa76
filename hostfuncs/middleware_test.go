package hostfuncs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanicRecoveryMiddleware(t *testing.T) {
	wrapped := PanicRecoveryMiddleware()(func(ctx context.Context, payload []byte) ([]byte, error) {
		panic("store exploded")
	})

	resp, err := wrapped(context.Background(), []byte("{}"))
	require.NoError(t, err)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(resp, &errResp))
	assert.Equal(t, "INTERNAL_ERROR", errResp.Error)
	assert.Equal(t, 500, errResp.Code)
	assert.Equal(t, "panic: store exploded", errResp.Message)
}

func TestPanicRecoveryMiddleware_NoPanic(t *testing.T) {
	wrapped := PanicRecoveryMiddleware()(func(ctx context.Context, payload []byte) ([]byte, error) {
		return []byte(`{"ok":true}`), nil
	})

	resp, err := wrapped(context.Background(), []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(resp))
}

func TestLoggingMiddleware(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg, err := NewRegistry(
		WithMiddleware(LoggingMiddleware(logger)),
		WithByteHandler("session_get", func(ctx context.Context, payload []byte) ([]byte, error) {
			return []byte(`{}`), nil
		}),
		WithByteHandler("http_request", func(ctx context.Context, payload []byte) ([]byte, error) {
			return nil, errors.New("dial failed")
		}),
	)
	require.NoError(t, err)

	ctx := WithProgram(context.Background(), "index")

	_, err = reg.Invoke(ctx, "session_get", []byte(`{"key":"k"}`))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "host function completed")
	assert.Contains(t, out.String(), "function=session_get")
	assert.Contains(t, out.String(), "program=index")

	_, err = reg.Invoke(ctx, "http_request", nil)
	require.Error(t, err)
	assert.Contains(t, out.String(), "host function failed")
	assert.Contains(t, out.String(), "dial failed")
}

func TestLoggingMiddleware_NilLoggerUsesDefault(t *testing.T) {
	mw := LoggingMiddleware(nil)
	resp, err := mw(func(ctx context.Context, payload []byte) ([]byte, error) {
		return payload, nil
	})(context.Background(), []byte("x"))

	require.NoError(t, err)
	assert.Equal(t, "x", string(resp))
}
