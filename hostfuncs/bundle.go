package hostfuncs

import (
	"context"

	"github.com/nthnn/ura/domain/ports"
)

// HostFuncBundle is a pre-configured set of related host functions.
type HostFuncBundle interface {
	// Handlers returns a map of handler names to ByteHandler functions.
	Handlers() map[string]ByteHandler
}

type staticBundle struct {
	handlers map[string]ByteHandler
}

func (b *staticBundle) Handlers() map[string]ByteHandler {
	return b.handlers
}

// SessionBundle returns the session storage host functions:
// session_get, session_set, session_has, session_remove.
func SessionBundle(store ports.SessionStore) HostFuncBundle {
	return &staticBundle{
		handlers: map[string]ByteHandler{
			"session_get": NewJSONHandler(func(_ context.Context, req SessionGetRequest) SessionGetResponse {
				return PerformSessionGet(store, req)
			}),
			"session_set": NewJSONHandler(func(_ context.Context, req SessionSetRequest) SessionResponse {
				return PerformSessionSet(store, req)
			}),
			"session_has": NewJSONHandler(func(_ context.Context, req SessionKeyRequest) SessionResponse {
				return PerformSessionHas(store, req)
			}),
			"session_remove": NewJSONHandler(func(_ context.Context, req SessionKeyRequest) SessionResponse {
				return PerformSessionRemove(store, req)
			}),
		},
	}
}

// RequestBundle returns the http_request host function.
func RequestBundle(opts ...HTTPOption) HostFuncBundle {
	return &staticBundle{
		handlers: map[string]ByteHandler{
			"http_request": NewJSONHandler(func(ctx context.Context, req HTTPRequest) HTTPResponse {
				return PerformHTTPRequest(ctx, req, opts...)
			}),
		},
	}
}

type compositeBundle struct {
	bundles []HostFuncBundle
}

func (b *compositeBundle) Handlers() map[string]ByteHandler {
	result := make(map[string]ByteHandler)
	for _, bundle := range b.bundles {
		for name, handler := range bundle.Handlers() {
			result[name] = handler
		}
	}
	return result
}

// DefaultBundles combines the session and request bundles.
func DefaultBundles(store ports.SessionStore, opts ...HTTPOption) HostFuncBundle {
	return &compositeBundle{
		bundles: []HostFuncBundle{
			SessionBundle(store),
			RequestBundle(opts...),
		},
	}
}

// WithBundle registers all handlers from a bundle.
func WithBundle(bundle HostFuncBundle) RegistryOption {
	return func(b *registryBuilder) {
		for name, handler := range bundle.Handlers() {
			if err := b.addHandler(name, handler); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}
