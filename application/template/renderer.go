// Package template renders configuration files with text/template so they
// can refer to the environment, as in `base_url: {{ env "API_URL" }}`.
package template

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/nthnn/ura/domain/ports"
)

type templateConfig struct {
	lookupEnv func(string) (string, bool)
	strict    bool
}

func defaultTemplateConfig() templateConfig {
	return templateConfig{
		strict:    true,
		lookupEnv: os.LookupEnv,
	}
}

// TemplateOption configures a GoTemplateEngine.
type TemplateOption func(*templateConfig)

// WithStrict enables/disables strict mode for missing keys.
// When enabled (default), rendering fails if a referenced key is missing.
func WithStrict(enabled bool) TemplateOption {
	return func(c *templateConfig) {
		c.strict = enabled
	}
}

// WithLookupEnv replaces os.LookupEnv as the source of the env function.
func WithLookupEnv(fn func(string) (string, bool)) TemplateOption {
	return func(c *templateConfig) {
		if fn != nil {
			c.lookupEnv = fn
		}
	}
}

// GoTemplateEngine implements ports.TemplateEngine using text/template.
type GoTemplateEngine struct {
	config templateConfig
}

// NewGoTemplateEngine creates a new GoTemplateEngine.
func NewGoTemplateEngine(opts ...TemplateOption) ports.TemplateEngine {
	cfg := defaultTemplateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GoTemplateEngine{config: cfg}
}

// Render resolves raw against data. Besides the keys of data, templates
// may call env NAME [DEFAULT], which fails in strict mode when NAME is
// unset and no default is given. Input without "{{" is returned as is.
func (e *GoTemplateEngine) Render(raw []byte, data map[string]any) ([]byte, error) {
	if !bytes.Contains(raw, []byte("{{")) {
		return raw, nil
	}

	tmpl := template.New("config").Funcs(template.FuncMap{"env": e.env})
	if e.config.strict {
		tmpl = tmpl.Option("missingkey=error")
	}

	tmpl, err := tmpl.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute config template: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *GoTemplateEngine) env(name string, def ...string) (string, error) {
	if v, ok := e.config.lookupEnv(name); ok {
		return v, nil
	}
	if len(def) > 0 {
		return strings.Join(def, " "), nil
	}
	if e.config.strict {
		return "", fmt.Errorf("environment variable %s is not set", name)
	}
	return "", nil
}
