package ports

import "github.com/nthnn/ura/domain/entities"

// ConfigParser parses raw configuration bytes into a Config.
type ConfigParser interface {
	Parse(data []byte) (*entities.Config, error)
}

// DocumentValidator validates a decoded configuration document
// (maps, slices and scalars) before it is bound to a struct.
type DocumentValidator interface {
	Validate(doc any) (*entities.ValidationResult, error)
}

// TemplateEngine renders a configuration file before it is parsed.
type TemplateEngine interface {
	// Render resolves the placeholders of raw against data.
	Render(raw []byte, data map[string]any) ([]byte, error)
}
