package source

import (
	"net/http"
	"strings"
	"time"

	"github.com/nthnn/ura/domain/ports"
)

// DefaultMaxSize is the largest binary a source accepts unless configured.
const DefaultMaxSize int64 = 64 << 20

type config struct {
	client  *http.Client
	maxSize int64
	timeout time.Duration
}

func defaultConfig() config {
	return config{
		maxSize: DefaultMaxSize,
		timeout: 30 * time.Second,
	}
}

// Option configures a source.
type Option func(*config)

// WithMaxSize sets the largest binary accepted. Zero or less disables the limit.
func WithMaxSize(n int64) Option {
	return func(c *config) {
		c.maxSize = n
	}
}

// WithTimeout sets the HTTP client timeout of an HTTPSource.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the client an HTTPSource uses.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// New picks the adapter for location: http:// and https:// locations
// become an HTTPSource, anything else a directory.
func New(location string, opts ...Option) (ports.BinarySource, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, opts...)
	}
	if location == "" {
		location = "."
	}
	return NewDirSource(location, opts...), nil
}
