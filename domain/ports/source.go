package ports

import "context"

// BinarySource retrieves program binaries by resource path.
type BinarySource interface {
	// Fetch returns the bytes stored at path (e.g. "asm/main.wasm").
	// Each call performs exactly one retrieval.
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Catalog is implemented by sources that can enumerate the programs they hold.
type Catalog interface {
	// List returns the program names available under asm/, sorted.
	List(ctx context.Context) ([]string, error)
}
