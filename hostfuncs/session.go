package hostfuncs

import (
	"github.com/nthnn/ura/domain/ports"
)

// SessionGetRequest reads a session key.
type SessionGetRequest struct {
	Key string `json:"key"`
}

// SessionGetResponse carries the stored value. Found is false for a missing key,
// which the guest sees the way a browser program sees getItem returning null.
type SessionGetResponse struct {
	Error *ErrorResponse `json:"error,omitempty"`
	Value string         `json:"value"`
	Found bool           `json:"found"`
}

// SessionSetRequest stores a value under a key.
type SessionSetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SessionKeyRequest names a key for session_has and session_remove.
type SessionKeyRequest struct {
	Key string `json:"key"`
}

// SessionResponse is returned by session_set, session_has and session_remove.
type SessionResponse struct {
	Error *ErrorResponse `json:"error,omitempty"`
	Found bool           `json:"found,omitempty"`
	OK    bool           `json:"ok"`
}

func missingKey() *ErrorResponse {
	e := NewValidationError("key is required")
	return &e
}

func storeFailure(err error) *ErrorResponse {
	e := NewInternalError(err.Error())
	return &e
}

// PerformSessionGet reads a key from the store.
func PerformSessionGet(store ports.SessionStore, req SessionGetRequest) SessionGetResponse {
	if req.Key == "" {
		return SessionGetResponse{Error: missingKey()}
	}
	value, found, err := store.Get(req.Key)
	if err != nil {
		return SessionGetResponse{Error: storeFailure(err)}
	}
	return SessionGetResponse{Value: value, Found: found}
}

// PerformSessionSet writes a key to the store.
func PerformSessionSet(store ports.SessionStore, req SessionSetRequest) SessionResponse {
	if req.Key == "" {
		return SessionResponse{Error: missingKey()}
	}
	if err := store.Set(req.Key, req.Value); err != nil {
		return SessionResponse{Error: storeFailure(err)}
	}
	return SessionResponse{OK: true}
}

// PerformSessionHas reports whether a key exists.
func PerformSessionHas(store ports.SessionStore, req SessionKeyRequest) SessionResponse {
	if req.Key == "" {
		return SessionResponse{Error: missingKey()}
	}
	_, found, err := store.Get(req.Key)
	if err != nil {
		return SessionResponse{Error: storeFailure(err)}
	}
	return SessionResponse{OK: true, Found: found}
}

// PerformSessionRemove deletes a key.
func PerformSessionRemove(store ports.SessionStore, req SessionKeyRequest) SessionResponse {
	if req.Key == "" {
		return SessionResponse{Error: missingKey()}
	}
	if err := store.Remove(req.Key); err != nil {
		return SessionResponse{Error: storeFailure(err)}
	}
	return SessionResponse{OK: true}
}
