package entities

import (
	"time"
)

// Config represents the settings of the loader, its host bridge and the
// static server. It is read from YAML by infrastructure/config.
type Config struct {
	// Program holds the per-instance settings passed through the bridge.
	Program ProgramConfig `yaml:"program" json:"program,omitempty"`

	// Session selects the session storage backing the session_* host functions.
	Session SessionConfig `yaml:"session" json:"session,omitempty"`

	// Source is a directory or an http(s) URL whose asm/ directory holds the binaries.
	Source string `yaml:"source" json:"source,omitempty" validate:"required" jsonschema:"description=Directory or http(s) URL serving asm/<name>.wasm"`

	// EntryPoint is the export called after instantiation.
	EntryPoint string `yaml:"entry_point" json:"entry_point,omitempty"`

	// Log configures the host logger.
	Log LogConfig `yaml:"log" json:"log,omitempty"`

	// API configures the http_request host function.
	API APIConfig `yaml:"api" json:"api,omitempty"`

	// Server configures `ura serve`.
	Server ServerConfig `yaml:"server" json:"server,omitempty"`

	// MaxBinarySize caps the size of a fetched binary in bytes.
	MaxBinarySize int64 `yaml:"max_binary_size" json:"max_binary_size,omitempty" validate:"gte=0" jsonschema:"minimum=0"`

	// FetchTimeoutSeconds bounds a single fetch. Zero disables the bound.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds" json:"fetch_timeout_seconds,omitempty" validate:"gte=0" jsonschema:"minimum=0"`
}

// LogConfig configures the host logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level,omitempty" validate:"omitempty,oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `yaml:"format" json:"format,omitempty" validate:"omitempty,oneof=text json auto" jsonschema:"enum=text,enum=json,enum=auto"`
}

// ProgramConfig is applied to every instance created through the bridge.
type ProgramConfig struct {
	Env map[string]string `yaml:"env" json:"env,omitempty"`

	// Args follow the program name, which is always argv[0].
	Args []string `yaml:"args" json:"args,omitempty"`

	// MountDir, when set, is exposed to programs as the WASI root directory.
	MountDir string `yaml:"mount_dir" json:"mount_dir,omitempty"`
}

// SessionConfig selects the session store.
// An empty Path keeps sessions in memory for the lifetime of the process.
type SessionConfig struct {
	Path string `yaml:"path" json:"path,omitempty"`
}

// APIConfig configures the http_request host function.
type APIConfig struct {
	// BaseURL resolves relative request URLs, like a browser resolves them
	// against the page origin.
	BaseURL string `yaml:"base_url" json:"base_url,omitempty" validate:"omitempty,url"`

	// AllowHosts restricts the hosts requests may reach. Each entry is
	// "host", "host:port" or "host:lo-hi" with host a glob such as
	// "*.example.com". Empty allows every host.
	AllowHosts []string `yaml:"allow_hosts" json:"allow_hosts,omitempty"`

	TimeoutSeconds int   `yaml:"timeout_seconds" json:"timeout_seconds,omitempty" validate:"gte=0" jsonschema:"minimum=0"`
	MaxBodySize    int64 `yaml:"max_body_size" json:"max_body_size,omitempty" validate:"gte=0" jsonschema:"minimum=0"`
}

// ServerConfig configures the static file server.
type ServerConfig struct {
	Address string `yaml:"address" json:"address,omitempty"`
	Base    string `yaml:"base" json:"base,omitempty"`
	Dir     string `yaml:"dir" json:"dir,omitempty"`
	Port    int    `yaml:"port" json:"port,omitempty" validate:"gte=0,lte=65535" jsonschema:"minimum=0,maximum=65535"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Source:              ".",
		EntryPoint:          "_start",
		MaxBinarySize:       64 * 1024 * 1024,
		FetchTimeoutSeconds: 30,
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		API: APIConfig{
			TimeoutSeconds: 30,
			MaxBodySize:    10 * 1024 * 1024,
		},
		Server: ServerConfig{
			Address: "0.0.0.0",
			Port:    8080,
			Base:    ".",
			Dir:     "public",
		},
	}
}

// ConfigOption is a functional option for configuring settings.
type ConfigOption func(*Config)

// WithSource sets the binary source location.
func WithSource(location string) ConfigOption {
	return func(c *Config) {
		if location != "" {
			c.Source = location
		}
	}
}

// WithEntryPoint sets the export called after instantiation.
func WithEntryPoint(name string) ConfigOption {
	return func(c *Config) {
		if name != "" {
			c.EntryPoint = name
		}
	}
}

// WithLogLevel sets the logging verbosity level.
func WithLogLevel(level string) ConfigOption {
	return func(c *Config) {
		c.Log.Level = level
	}
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate checks the configuration's struct tags.
func (c Config) Validate() error {
	return structValidator().Struct(c)
}

// FetchTimeout returns the fetch bound, zero meaning none.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Timeout returns the request timeout of the http_request host function.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
