// Package hostfuncs provides the pure Go logic behind the functions exported
// by the ura_host module: session storage, HTTP requests and the plumbing
// (registry, middleware, JSON handlers) shared by all of them.
//
// Nothing in this package depends on the WASM runtime; the wazero adapter in
// infrastructure/wazero moves bytes between guest memory and these handlers.
package hostfuncs
