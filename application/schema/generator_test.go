package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema_NestedStruct(t *testing.T) {
	type ServerConfig struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	}

	type Config struct {
		Server  ServerConfig `json:"server"`
		Timeout int          `json:"timeout,omitempty"`
	}

	schema, err := GenerateSchema(Config{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(schema, &decoded))

	properties, ok := decoded["properties"].(map[string]any)
	require.True(t, ok, "properties should be a map")
	assert.Contains(t, properties, "server")
	assert.Contains(t, properties, "timeout")

	required, ok := decoded["required"].([]any)
	require.True(t, ok, "required should be an array")
	assert.Contains(t, required, "server")
	assert.NotContains(t, required, "timeout")
	assert.Contains(t, string(schema), "host")
}

func TestConfigSchema(t *testing.T) {
	schema, err := ConfigSchema()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(schema, &decoded))

	assert.Equal(t, "object", decoded["type"])
	assert.Equal(t, false, decoded["additionalProperties"])

	properties, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"source", "entry_point", "program", "session", "log", "api", "server", "max_binary_size", "fetch_timeout_seconds"} {
		assert.Contains(t, properties, key)
	}

	source, ok := properties["source"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Directory or http(s) URL serving asm/<name>.wasm", source["description"])

	assert.Contains(t, string(schema), `"enum"`)
	assert.Contains(t, string(schema), `"debug"`)
}
