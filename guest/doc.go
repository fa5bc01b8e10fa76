// Package guest is imported by programs compiled with GOOS=wasip1 to reach
// the ura_host functions: session storage, HTTP requests and host logging.
//
// Build a program with:
//
//	GOOS=wasip1 GOARCH=wasm go build -o asm/main.wasm ./cmd/main
//
// On other platforms every call fails with ErrUnavailable.
package guest
