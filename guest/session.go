package guest

import "github.com/nthnn/ura/hostfuncs"

// Session is the program's view of the host session store. Values live as
// long as the host's store does, so a program sees what an earlier program
// of the same host stored.
type Session struct{}

// Get returns the value stored under key. A missing key is not an error.
func (Session) Get(key string) (string, bool, error) {
	var resp hostfuncs.SessionGetResponse
	if err := call("session_get", hostfuncs.SessionGetRequest{Key: key}, &resp); err != nil {
		return "", false, err
	}
	if err := hostError(resp.Error); err != nil {
		return "", false, err
	}
	return resp.Value, resp.Found, nil
}

// Set stores value under key.
func (Session) Set(key, value string) error {
	var resp hostfuncs.SessionResponse
	if err := call("session_set", hostfuncs.SessionSetRequest{Key: key, Value: value}, &resp); err != nil {
		return err
	}
	return hostError(resp.Error)
}

// Has reports whether key is stored.
func (Session) Has(key string) (bool, error) {
	var resp hostfuncs.SessionResponse
	if err := call("session_has", hostfuncs.SessionKeyRequest{Key: key}, &resp); err != nil {
		return false, err
	}
	if err := hostError(resp.Error); err != nil {
		return false, err
	}
	return resp.Found, nil
}

// Remove deletes key. Removing a missing key succeeds.
func (Session) Remove(key string) error {
	var resp hostfuncs.SessionResponse
	if err := call("session_remove", hostfuncs.SessionKeyRequest{Key: key}, &resp); err != nil {
		return err
	}
	return hostError(resp.Error)
}
