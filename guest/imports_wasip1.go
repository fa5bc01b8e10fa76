//go:build wasip1

package guest

import (
	"fmt"

	"github.com/nthnn/ura/internal/abi"
)

//go:wasmimport ura_host session_get
//nolint:revive // snake_case matches the import name
func host_session_get(packed uint64) uint64

//go:wasmimport ura_host session_set
//nolint:revive // snake_case matches the import name
func host_session_set(packed uint64) uint64

//go:wasmimport ura_host session_has
//nolint:revive // snake_case matches the import name
func host_session_has(packed uint64) uint64

//go:wasmimport ura_host session_remove
//nolint:revive // snake_case matches the import name
func host_session_remove(packed uint64) uint64

//go:wasmimport ura_host http_request
//nolint:revive // snake_case matches the import name
func host_http_request(packed uint64) uint64

//go:wasmimport ura_host log_message
//nolint:revive // snake_case matches the import name
func host_log_message(packed uint64)

func init() {
	invoke = wasmInvoke
	sendLog = func(data []byte) {
		packed := abi.PtrFromBytes(data)
		defer abi.DeallocatePacked(packed)
		host_log_message(packed)
	}
}

func wasmInvoke(name string, request []byte) ([]byte, error) {
	packed := abi.PtrFromBytes(request)
	defer abi.DeallocatePacked(packed)

	var resp uint64
	switch name {
	case "session_get":
		resp = host_session_get(packed)
	case "session_set":
		resp = host_session_set(packed)
	case "session_has":
		resp = host_session_has(packed)
	case "session_remove":
		resp = host_session_remove(packed)
	case "http_request":
		resp = host_http_request(packed)
	default:
		return nil, fmt.Errorf("guest: unknown host function %q", name)
	}

	if resp == 0 {
		return nil, ErrNoResponse
	}
	defer abi.DeallocatePacked(resp)
	return abi.BytesFromPtr(resp), nil
}
