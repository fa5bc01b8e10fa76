//go:build wasip1

package abi

import (
	"fmt"
	"sync"
	"unsafe"
)

// DefaultMaxTotalAllocations bounds the memory pinned for host calls.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024

// memoryManager pins buffers handed to the host until they are freed,
// so the garbage collector cannot reclaim them mid-call.
var memoryManager = struct {
	sync.Mutex
	ptrs           map[uint32][]byte
	totalAllocated int
	limit          int
}{
	ptrs:  make(map[uint32][]byte),
	limit: DefaultMaxTotalAllocations,
}

// Option configures the memory manager.
type Option func(*int)

// WithMaxTotalAllocations sets the allocation limit. Non-positive values are ignored.
func WithMaxTotalAllocations(limit int) Option {
	return func(l *int) {
		if limit > 0 {
			*l = limit
		}
	}
}

// Configure applies opts to the memory manager.
func Configure(opts ...Option) {
	memoryManager.Lock()
	defer memoryManager.Unlock()
	for _, opt := range opts {
		opt(&memoryManager.limit)
	}
}

// allocate reserves size bytes and returns their address. The host calls it
// to place a host function response in the program's memory.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	memoryManager.Lock()
	defer memoryManager.Unlock()

	if memoryManager.totalAllocated+int(size) > memoryManager.limit {
		panic(fmt.Sprintf("abi: memory allocation limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			size, memoryManager.totalAllocated, memoryManager.limit))
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0]))) //nolint:gosec // G103,G115: wasm32 addresses fit in uint32

	memoryManager.ptrs[ptr] = buf
	memoryManager.totalAllocated += int(size)
	return ptr
}

// deallocate unpins the buffer at ptr. Unknown pointers are ignored.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	buf, ok := memoryManager.ptrs[ptr]
	if !ok {
		return
	}
	delete(memoryManager.ptrs, ptr)
	memoryManager.totalAllocated -= len(buf)
}

// FreeAllTracked unpins every buffer.
func FreeAllTracked() {
	memoryManager.Lock()
	defer memoryManager.Unlock()
	clear(memoryManager.ptrs)
	memoryManager.totalAllocated = 0
}

// Stats returns the number of pinned buffers and their total size.
func Stats() (count, total int) {
	memoryManager.Lock()
	defer memoryManager.Unlock()
	return len(memoryManager.ptrs), memoryManager.totalAllocated
}

// PtrFromBytes copies data into pinned memory and returns it packed.
// Free it with DeallocatePacked once the host call returns.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data)) //nolint:gosec // G115: wasm32 slices fit in uint32
	ptr := allocate(size)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), size), data) //nolint:gosec // G103: linear memory access
	return PackPtrLen(ptr, size)
}

// BytesFromPtr copies the region named by packed out of linear memory.
func BytesFromPtr(packed uint64) []byte {
	ptr, length := UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		return nil
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length) //nolint:gosec // G103: linear memory access
	return append([]byte(nil), src...)
}

// DeallocatePacked unpins the region named by packed.
func DeallocatePacked(packed uint64) {
	ptr, length := UnpackPtrLen(packed)
	if ptr != 0 && length > 0 {
		deallocate(ptr, length)
	}
}
