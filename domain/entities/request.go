package entities

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// ResourceDir and ResourceExt frame every program binary path.
const (
	ResourceDir = "asm"
	ResourceExt = ".wasm"
)

// validate is shared by every entity; validator caches struct metadata.
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// LoadRequest is the transient input of a single load.
// Name is the only constraint checked: it must be non-empty. Characters are
// neither validated nor escaped; callers supply safe identifiers.
type LoadRequest struct {
	Name string `json:"name" validate:"required"`
}

// NewLoadRequest creates a LoadRequest for the given program name.
func NewLoadRequest(name string) LoadRequest {
	return LoadRequest{Name: name}
}

// Validate checks the request's struct tags.
func (r LoadRequest) Validate() error {
	return structValidator().Struct(r)
}

// Path returns the resource path of the requested binary.
func (r LoadRequest) Path() string {
	return ResourcePath(r.Name)
}

// ResourcePath builds "asm/<name>.wasm" by plain concatenation.
func ResourcePath(name string) string {
	return ResourceDir + "/" + name + ResourceExt
}
