package hostfuncs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, payload []byte) ([]byte, error) {
	return nil, nil
}

func TestNewRegistry_Empty(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Empty(t, reg.Names())
}

func TestNewRegistry_Errors(t *testing.T) {
	_, err := NewRegistry(WithByteHandler("session_get", noop), WithByteHandler("session_get", noop))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate handler name")

	_, err = NewRegistry(WithByteHandler("", noop))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestHandlerRegistry_Invoke(t *testing.T) {
	reg, err := NewRegistry(
		WithByteHandler("echo", func(ctx context.Context, payload []byte) ([]byte, error) {
			return append([]byte("echo:"), payload...), nil
		}),
	)
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		resp, err := reg.Invoke(context.Background(), "echo", []byte("hi"))
		require.NoError(t, err)
		assert.Equal(t, "echo:hi", string(resp))
	})

	t.Run("not found", func(t *testing.T) {
		resp, err := reg.Invoke(context.Background(), "missing", nil)
		require.NoError(t, err)

		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(resp, &errResp))
		assert.Equal(t, "NOT_FOUND", errResp.Error)
		assert.Equal(t, 404, errResp.Code)
	})
}

func TestHandlerRegistry_NamesSorted(t *testing.T) {
	reg, err := NewRegistry(
		WithByteHandler("session_set", noop),
		WithByteHandler("http_request", noop),
		WithByteHandler("session_get", noop),
	)
	require.NoError(t, err)

	names := reg.Names()
	assert.Equal(t, []string{"http_request", "session_get", "session_set"}, names)

	names[0] = "mutated"
	assert.Equal(t, "http_request", reg.Names()[0])
	assert.True(t, reg.Has("session_get"))
	assert.False(t, reg.Has("mutated"))
}

func TestHandlerRegistry_SetsFunctionName(t *testing.T) {
	var captured string
	reg, err := NewRegistry(WithByteHandler("session_has", func(ctx context.Context, payload []byte) ([]byte, error) {
		if hc, ok := ctx.(HostContext); ok {
			captured = hc.FunctionName()
		}
		return nil, nil
	}))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "session_has", nil)
	require.NoError(t, err)
	assert.Equal(t, "session_has", captured)
}

func TestWithMiddleware_FIFO(t *testing.T) {
	var order []string
	trace := func(label string) Middleware {
		return func(next ByteHandler) ByteHandler {
			return func(ctx context.Context, payload []byte) ([]byte, error) {
				order = append(order, label+"-before")
				resp, err := next(ctx, payload)
				order = append(order, label+"-after")
				return resp, err
			}
		}
	}

	reg, err := NewRegistry(
		WithMiddleware(trace("mw1"), trace("mw2")),
		WithByteHandler("test", func(ctx context.Context, payload []byte) ([]byte, error) {
			order = append(order, "handler")
			return nil, nil
		}),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "test", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"mw1-before", "mw2-before", "handler", "mw2-after", "mw1-after"}, order)
}

func TestWithHandler_Typed(t *testing.T) {
	type req struct {
		N int `json:"n"`
	}
	type resp struct {
		Double int `json:"double"`
	}

	reg, err := NewRegistry(WithHandler("double", func(_ context.Context, r req) resp {
		return resp{Double: r.N * 2}
	}))
	require.NoError(t, err)

	out, err := reg.Invoke(context.Background(), "double", []byte(`{"n":21}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"double":42}`, string(out))

	out, err = reg.Invoke(context.Background(), "double", []byte(`{bad`))
	require.NoError(t, err)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(out, &errResp))
	assert.Equal(t, "VALIDATION_ERROR", errResp.Error)
	assert.Contains(t, errResp.Message, "unmarshal")
}
