package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourcePath(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "main", want: "asm/main.wasm"},
		{name: "dashboard", want: "asm/dashboard.wasm"},
		{name: "a.b", want: "asm/a.b.wasm"},
		// Not escaped: concatenation is the whole contract.
		{name: "../x", want: "asm/../x.wasm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResourcePath(tt.name))
			assert.Equal(t, tt.want, NewLoadRequest(tt.name).Path())
		})
	}
}

func TestLoadRequest_Validate(t *testing.T) {
	require.NoError(t, NewLoadRequest("main").Validate())
	require.NoError(t, NewLoadRequest("with space").Validate())

	err := NewLoadRequest("").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
}
