package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nthnn/ura/domain/errors"
	"github.com/nthnn/ura/domain/ports"
)

// HTTPSource fetches binaries with one GET against a base URL, the way a
// browser page fetches asm/<name>.wasm relative to its own origin.
type HTTPSource struct {
	client  *http.Client
	base    *url.URL
	maxSize int64
}

var _ ports.BinarySource = (*HTTPSource)(nil)

// NewHTTPSource creates a source rooted at base.
func NewHTTPSource(base string, opts ...Option) (*HTTPSource, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", base)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	client := cfg.client
	if client == nil {
		client = &http.Client{Timeout: cfg.timeout}
	}

	return &HTTPSource{client: client, base: u, maxSize: cfg.maxSize}, nil
}

// Fetch implements ports.BinarySource.
func (s *HTTPSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	ref, err := url.Parse(p)
	if err != nil {
		return nil, fmt.Errorf("invalid resource path %q: %w", p, err)
	}
	target := s.base.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &errors.HTTPError{Method: http.MethodGet, URL: target, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &errors.HTTPError{Method: http.MethodGet, URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errors.HTTPError{Method: http.MethodGet, URL: target, StatusCode: resp.StatusCode}
	}
	if s.maxSize > 0 && resp.ContentLength > s.maxSize {
		return nil, &errors.SizeLimitError{Path: p, Size: resp.ContentLength, Limit: s.maxSize}
	}

	data, err := readLimited(resp.Body, p, s.maxSize)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Base returns the URL paths are resolved against.
func (s *HTTPSource) Base() string {
	return s.base.String()
}
