package wasmtest

// Opcodes used by the canned modules.
const (
	OpUnreachable byte = 0x00
	OpEnd         byte = 0x0b
	OpCall        byte = 0x10
	OpDrop        byte = 0x1a
	OpI32Const    byte = 0x41
	OpI64Const    byte = 0x42
)

// I32Const encodes i32.const v.
func I32Const(v int32) []byte {
	return AppendS64([]byte{OpI32Const}, int64(v))
}

// I64Const encodes i64.const v.
func I64Const(v int64) []byte {
	return AppendS64([]byte{OpI64Const}, v)
}

// Call encodes call idx.
func Call(idx uint32) []byte {
	return AppendU32([]byte{OpCall}, idx)
}

// Code concatenates instructions.
func Code(instrs ...[]byte) []byte {
	var out []byte
	for _, in := range instrs {
		out = append(out, in...)
	}
	return out
}
