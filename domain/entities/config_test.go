package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".", cfg.Source)
	assert.Equal(t, "_start", cfg.EntryPoint)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 30*time.Second, cfg.API.Timeout())
	assert.Equal(t, 8080, cfg.Server.Port)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithSource("http://localhost:8080"),
		WithEntryPoint("run"),
		WithLogLevel("debug"),
	)

	assert.Equal(t, "http://localhost:8080", cfg.Source)
	assert.Equal(t, "run", cfg.EntryPoint)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestNewConfig_EmptyOptionsKeepDefaults(t *testing.T) {
	cfg := NewConfig(WithSource(""), WithEntryPoint(""))

	assert.Equal(t, ".", cfg.Source)
	assert.Equal(t, "_start", cfg.EntryPoint)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty source", mutate: func(c *Config) { c.Source = "" }, wantErr: "Source"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantErr: "Level"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "Format"},
		{name: "negative size", mutate: func(c *Config) { c.MaxBinarySize = -1 }, wantErr: "MaxBinarySize"},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "Port"},
		{name: "bad api url", mutate: func(c *Config) { c.API.BaseURL = "not a url" }, wantErr: "BaseURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "fetch", StageFetch.String())
	assert.Equal(t, "run", StageRun.String())
	assert.Equal(t, "unknown", Stage(42).String())
	assert.Equal(t, "start", PhaseStart.String())
	assert.Equal(t, "end", PhaseEnd.String())
}
