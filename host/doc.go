// Package host loads and runs programs compiled to WebAssembly.
//
// A Bridge is the import object: one wazero runtime with WASI preview1 and
// the ura_host module instantiated into it. A Loader turns a program name
// into the resource path asm/<name>.wasm, fetches the binary from its
// source, compiles and instantiates it against a Bridge, and calls its entry
// point. Every load runs the stages fetch, compile, instantiate and run at
// most once each and in that order; the first failure ends the load.
//
//	bridge, err := host.NewBridge(ctx, host.WithHostFunctions(registry))
//	if err != nil {
//	    return err
//	}
//	defer bridge.Close(ctx)
//
//	loader := host.NewLoader(source.NewDirSource("public"))
//	result, err := loader.Load(ctx, bridge, "main")
//
// A Bridge may be shared by concurrent loads. Each instantiation gets a
// unique name, so instances of the same program do not collide.
package host
