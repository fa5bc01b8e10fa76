// Package abi implements the calling convention between programs and the
// ura_host module: a request or response travels as a single i64 holding
// a pointer into the program's linear memory and a length.
package abi

// PtrHighBits is the shift of the pointer within a packed value.
const PtrHighBits = 32

// PackPtrLen packs a pointer and length into a single uint64.
// Pointer is stored in the high 32 bits, length in the low 32 bits.
func PackPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its pointer and length.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> PtrHighBits) //nolint:gosec // G115: packed format stores 32-bit values
	length = uint32(packed)             //nolint:gosec // G115: packed format stores 32-bit values
	return ptr, length
}

// Valid reports whether packed is zero or names a non-null region.
// A null pointer with a non-zero length is never produced by this package.
func Valid(packed uint64) bool {
	ptr, length := UnpackPtrLen(packed)
	return ptr != 0 || length == 0
}
