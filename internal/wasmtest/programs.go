package wasmtest

import "github.com/nthnn/ura/internal/abi"

// Header is the smallest valid module.
var Header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// Malformed is not a module.
var Malformed = []byte("not a wasm binary")

// RequestOffset is where Calling and Logging place their request payload.
const RequestOffset = 16

// ResponseOffset is what the allocate export of Calling returns.
const ResponseOffset = 4096

// Noop exports an empty entry point.
func Noop(entry string) []byte {
	m := Module{
		Types: []FuncType{{}},
		Funcs: []Func{{Type: 0, Export: entry}},
	}
	return m.Encode()
}

// Trap exports an entry point that executes unreachable.
func Trap(entry string) []byte {
	m := Module{
		Types: []FuncType{{}},
		Funcs: []Func{{Type: 0, Export: entry, Body: []byte{OpUnreachable}}},
	}
	return m.Encode()
}

// Exit exports an entry point that calls WASI proc_exit(code).
func Exit(entry string, code int32) []byte {
	m := Module{
		Types: []FuncType{
			{Params: []ValType{I32}},
			{},
		},
		Imports: []Import{{Module: "wasi_snapshot_preview1", Name: "proc_exit", Type: 0}},
		Funcs:   []Func{{Type: 1, Export: entry, Body: Code(I32Const(code), Call(0))}},
	}
	return m.Encode()
}

// Importing imports module.name as a () -> () function and exports an
// empty entry point that never calls it.
func Importing(entry, module, name string) []byte {
	m := Module{
		Types:   []FuncType{{}},
		Imports: []Import{{Module: module, Name: name, Type: 0}},
		Funcs:   []Func{{Type: 0, Export: entry}},
	}
	return m.Encode()
}

// Calling exports an entry point that calls module.name, an (i64) -> i64
// host function, with request packed as ptr<<32|len. It exports "memory"
// and an "allocate" that always returns ResponseOffset.
func Calling(entry, module, name string, request []byte) []byte {
	m := Module{
		Types: []FuncType{
			{Params: []ValType{I64}, Results: []ValType{I64}},
			{},
			{Params: []ValType{I32}, Results: []ValType{I32}},
		},
		Imports: []Import{{Module: module, Name: name, Type: 0}},
		Funcs: []Func{
			{Type: 1, Export: entry, Body: Code(I64Const(Pack(RequestOffset, len(request))), Call(0), []byte{OpDrop})},
			{Type: 2, Export: "allocate", Body: I32Const(ResponseOffset)},
		},
		MemoryPages:  1,
		MemoryExport: "memory",
		Data:         []Data{{Offset: RequestOffset, Bytes: request}},
	}
	return m.Encode()
}

// Logging exports an entry point that passes payload to module.name, an
// (i64) -> () host function such as log_message.
func Logging(entry, module, name string, payload []byte) []byte {
	m := Module{
		Types: []FuncType{
			{Params: []ValType{I64}},
			{},
		},
		Imports: []Import{{Module: module, Name: name, Type: 0}},
		Funcs: []Func{
			{Type: 1, Export: entry, Body: Code(I64Const(Pack(RequestOffset, len(payload))), Call(0))},
		},
		MemoryPages:  1,
		MemoryExport: "memory",
		Data:         []Data{{Offset: RequestOffset, Bytes: payload}},
	}
	return m.Encode()
}

// Pack combines a pointer and length the way host functions expect.
func Pack(ptr uint32, length int) int64 {
	return int64(abi.PackPtrLen(ptr, uint32(length))) //nolint:gosec // test payloads are small
}
