// Package schema generates the JSON schema of the configuration file.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/nthnn/ura/domain/entities"
)

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go struct.
// Fields without omitempty in their json tag are required, and unknown
// properties are rejected.
func GenerateSchema(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		Anonymous:      true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// ConfigSchema returns the schema of entities.Config.
func ConfigSchema() ([]byte, error) {
	return GenerateSchema(&entities.Config{})
}
