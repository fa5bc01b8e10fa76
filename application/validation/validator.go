// Package validation checks configuration documents against a JSON schema.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/domain/ports"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "ura-config.schema.json"

// SchemaValidator validates decoded documents against one compiled schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

var _ ports.DocumentValidator = (*SchemaValidator)(nil)

// NewSchemaValidator compiles schema.
func NewSchemaValidator(schema []byte) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	sch, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &SchemaValidator{schema: sch}, nil
}

// Validate checks doc against the schema. Schema violations are reported in
// the result; the error is only set when doc cannot be prepared.
func (v *SchemaValidator) Validate(doc any) (*entities.ValidationResult, error) {
	// The validator expects the types encoding/json produces.
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}
	var obj any
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}

	result := &entities.ValidationResult{Valid: true}
	if err := v.schema.Validate(obj); err != nil {
		result.Valid = false
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			result.Errors = append(result.Errors, entities.ValidationError{Message: err.Error()})
			return result, nil
		}
		result.Errors = leafErrors(ve, nil)
		sort.SliceStable(result.Errors, func(i, j int) bool {
			return result.Errors[i].Field < result.Errors[j].Field
		})
	}
	return result, nil
}

// leafErrors flattens the cause tree to the errors that name a concrete violation.
func leafErrors(ve *jsonschema.ValidationError, out []entities.ValidationError) []entities.ValidationError {
	if len(ve.Causes) == 0 {
		field := ve.InstanceLocation
		if field == "" {
			field = "/"
		}
		return append(out, entities.ValidationError{Field: field, Message: ve.Message})
	}
	for _, c := range ve.Causes {
		out = leafErrors(c, out)
	}
	return out
}
