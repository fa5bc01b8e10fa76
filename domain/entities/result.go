package entities

import (
	"time"
)

// LoadResult describes a load that ran its entry point to completion.
type LoadResult struct {
	// StartedAt is when the load was accepted.
	StartedAt time.Time `json:"started_at"`

	// Name is the requested program name.
	Name string `json:"name"`

	// Path is the resource path the binary was fetched from.
	Path string `json:"path"`

	// Instance is the unique runtime name given to the instantiation.
	Instance string `json:"instance"`

	// Duration covers the whole pipeline, entry point included.
	Duration time.Duration `json:"duration"`

	// Size is the length of the fetched binary in bytes.
	Size int `json:"size"`

	// ExitCode is the WASI exit code. Always zero for a successful load.
	ExitCode uint32 `json:"exit_code"`
}
