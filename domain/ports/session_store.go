package ports

// SessionStore backs the session_* host functions. It plays the part of
// the browser's sessionStorage for programs run outside a browser.
type SessionStore interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	// Keys returns all stored keys, sorted.
	Keys() ([]string, error)
}
