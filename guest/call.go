package guest

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"

	"github.com/nthnn/ura/hostfuncs"
)

// ErrUnavailable is returned when the program does not run under a ura host.
var ErrUnavailable = stdErrors.New("guest: host functions are not available")

// ErrNoResponse is returned when the host could not deliver a response.
var ErrNoResponse = stdErrors.New("guest: host returned no response")

// HostError is an error reported by a host function.
type HostError struct {
	Kind    string
	Message string
	Code    int
}

func (e *HostError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
}

func hostError(r *hostfuncs.ErrorResponse) error {
	if r == nil {
		return nil
	}
	return &HostError{Kind: r.Error, Message: r.Message, Code: r.Code}
}

// invoke calls a host function with a JSON request and returns its JSON
// response. It is replaced at init on wasip1.
var invoke = unavailable

func unavailable(string, []byte) ([]byte, error) {
	return nil, ErrUnavailable
}

// sendLog hands an encoded log message to the host.
var sendLog = func([]byte) {}

// call marshals req, invokes fn and decodes the response into resp.
func call(fn string, req, resp any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("guest: encode %s request: %w", fn, err)
	}
	data, err := invoke(fn, payload)
	if err != nil {
		return err
	}
	return decode(fn, data, resp)
}

// decode distinguishes a bare ErrorResponse, which the host sends when it
// could not run the handler, from a typed response.
func decode(fn string, data []byte, resp any) error {
	if len(data) == 0 {
		return ErrNoResponse
	}
	var probe struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("guest: decode %s response: %w", fn, err)
	}
	if len(probe.Error) > 0 && probe.Error[0] == '"' {
		var e hostfuncs.ErrorResponse
		if err := json.Unmarshal(data, &e); err != nil {
			return fmt.Errorf("guest: decode %s error: %w", fn, err)
		}
		return hostError(&e)
	}
	if err := json.Unmarshal(data, resp); err != nil {
		return fmt.Errorf("guest: decode %s response: %w", fn, err)
	}
	return nil
}
