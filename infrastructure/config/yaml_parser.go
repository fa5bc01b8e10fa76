// Package config reads the YAML configuration file.
package config

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/nthnn/ura/application/schema"
	"github.com/nthnn/ura/application/template"
	"github.com/nthnn/ura/application/validation"
	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/domain/errors"
	"github.com/nthnn/ura/domain/ports"
	"gopkg.in/yaml.v3"
)

// YAMLParser implements ports.ConfigParser. A document is checked against
// the config schema before it is decoded over the defaults, and the result
// is checked against the struct's validate tags.
type YAMLParser struct {
	validator ports.DocumentValidator
}

var _ ports.ConfigParser = (*YAMLParser)(nil)

// NewYAMLParser creates a parser validating against v.
func NewYAMLParser(v ports.DocumentValidator) *YAMLParser {
	return &YAMLParser{validator: v}
}

// NewDefaultParser creates a parser validating against the generated
// schema of entities.Config.
func NewDefaultParser() (*YAMLParser, error) {
	doc, err := schema.ConfigSchema()
	if err != nil {
		return nil, err
	}
	v, err := validation.NewSchemaValidator(doc)
	if err != nil {
		return nil, err
	}
	return NewYAMLParser(v), nil
}

// Parse decodes data into a Config seeded with entities.DefaultConfig.
func (p *YAMLParser) Parse(data []byte) (*entities.Config, error) {
	cfg := entities.DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return &cfg, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &errors.ConfigError{Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}
	if doc == nil {
		doc = map[string]any{}
	}

	if p.validator != nil {
		result, err := p.validator.Validate(doc)
		if err != nil {
			return nil, &errors.ConfigError{Err: err}
		}
		if !result.Valid {
			field := ""
			if len(result.Errors) > 0 {
				field = result.Errors[0].Field
			}
			return nil, &errors.ConfigError{Field: field, Err: stdErrors.New(result.Summary())}
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &errors.ConfigError{Err: fmt.Errorf("failed to decode config: %w", err)}
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg's validate tags, reporting the first failing field.
func Validate(cfg *entities.Config) error {
	err := cfg.Validate()
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if stdErrors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return &errors.ConfigError{
			Field: fe.Namespace(),
			Err:   fmt.Errorf("failed on the '%s' rule", fe.Tag()),
		}
	}
	return &errors.ConfigError{Err: err}
}

// Load reads the file at path, renders it as a template, applies overrides
// and validates the result. Templates see the file's directory as .dir and
// the environment through env. An empty path yields the defaults with the
// overrides applied.
func Load(path string, overrides ...entities.ConfigOption) (*entities.Config, error) {
	parser, err := NewDefaultParser()
	if err != nil {
		return nil, err
	}

	var data []byte
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, &errors.ConfigError{Err: fmt.Errorf("failed to read config: %w", err)}
		}
		data, err = render(data, path)
		if err != nil {
			return nil, &errors.ConfigError{Err: err}
		}
	}

	cfg, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	for _, opt := range overrides {
		opt(cfg)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func render(data []byte, path string) ([]byte, error) {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return template.NewGoTemplateEngine().Render(data, map[string]any{"dir": dir})
}
