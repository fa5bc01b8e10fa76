// Package wazero registers host functions with a wazero runtime.
//
// Handlers from a hostfuncs.HandlerRegistry are exported from one host
// module (default "ura_host"). Every exported function takes a packed i64
// (pointer in the upper 32 bits, length in the lower 32) naming a JSON
// request in guest memory and returns a packed i64 naming the JSON response,
// which is written into memory obtained from the guest's "allocate" export.
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithBundle(hostfuncs.DefaultBundles(store)),
//	)
//	if err != nil {
//	    return err
//	}
//	err = wazero.RegisterWithRuntime(ctx, runtime, registry,
//	    wazero.WithCustomHandler(wazero.LogMessageHandler(logger)),
//	)
//
// log_message is a custom handler: it takes a packed payload and returns
// nothing.
package wazero
