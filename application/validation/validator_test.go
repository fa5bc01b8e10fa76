package validation_test

import (
	"testing"

	"github.com/nthnn/ura/application/schema"
	"github.com/nthnn/ura/application/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidator_Simple(t *testing.T) {
	v, err := validation.NewSchemaValidator([]byte(`{
		"type": "object",
		"required": ["rules"],
		"properties": {"rules": {"type": "array"}}
	}`))
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		res, err := v.Validate(map[string]any{"rules": []string{"a"}})
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("missing required", func(t *testing.T) {
		res, err := v.Validate(map[string]any{})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		require.NotEmpty(t, res.Errors)
		assert.Equal(t, "/", res.Errors[0].Field)
		assert.Contains(t, res.Errors[0].Message, "rules")
	})

	t.Run("wrong type", func(t *testing.T) {
		res, err := v.Validate(map[string]any{"rules": "nope"})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		require.NotEmpty(t, res.Errors)
		assert.Equal(t, "/rules", res.Errors[0].Field)
	})

	t.Run("unencodable", func(t *testing.T) {
		_, err := v.Validate(map[string]any{"ch": make(chan int)})
		require.Error(t, err)
	})
}

func TestSchemaValidator_InvalidSchema(t *testing.T) {
	_, err := validation.NewSchemaValidator([]byte(`{"type": 12}`))
	require.Error(t, err)
}

func TestSchemaValidator_ConfigSchema(t *testing.T) {
	doc, err := schema.ConfigSchema()
	require.NoError(t, err)

	v, err := validation.NewSchemaValidator(doc)
	require.NoError(t, err)

	res, err := v.Validate(map[string]any{
		"source": "https://example.com",
		"log":    map[string]any{"level": "debug"},
		"server": map[string]any{"port": 9000},
	})
	require.NoError(t, err)
	assert.True(t, res.Valid, res.Summary())

	res, err = v.Validate(map[string]any{
		"log":     map[string]any{"level": "loud"},
		"unknown": true,
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	summary := res.Summary()
	assert.Contains(t, summary, "/log/level")
	assert.Contains(t, summary, "unknown")
}
