package hostfuncs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nthnn/ura/domain/policy"
)

// HTTPRequest is what a program sends to http_request.
type HTTPRequest struct {
	// Headers contains request headers.
	Headers map[string]string `json:"headers,omitempty"`

	// Method is the HTTP method. Default is POST.
	Method string `json:"method,omitempty"`

	// URL is the target URL. Relative URLs resolve against the configured base.
	URL string `json:"url"`

	// Body is the request body text, usually JSON.
	Body string `json:"body,omitempty"`

	// Timeout is the request timeout in milliseconds, overriding the host default.
	Timeout int `json:"timeout_ms,omitempty"`
}

// HTTPResponse contains the result of an HTTP request.
type HTTPResponse struct {
	// Headers contains response headers.
	Headers map[string][]string `json:"headers,omitempty"`

	// Error contains error information if the request could not be performed.
	// A non-2xx status is not an error.
	Error *HTTPError `json:"error,omitempty"`

	// ContentType is the response Content-Type header.
	ContentType string `json:"content_type,omitempty"`

	// Body is the response body text.
	Body string `json:"body,omitempty"`

	// StatusCode is the HTTP status code.
	StatusCode int `json:"status_code"`

	// LatencyMs is the request latency in milliseconds.
	LatencyMs int64 `json:"latency_ms,omitempty"`

	// BodyTruncated indicates the body was cut at the size limit.
	BodyTruncated bool `json:"body_truncated,omitempty"`
}

// HTTPError represents an HTTP request error.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// HTTPOption is a functional option for configuring http_request.
type HTTPOption func(*httpConfig)

type httpConfig struct {
	client      *http.Client
	baseURL     *url.URL
	policy      *policy.Policy
	timeout     time.Duration
	maxBodySize int
}

func defaultHTTPConfig() httpConfig {
	return httpConfig{
		timeout:     30 * time.Second,
		maxBodySize: DefaultMaxBodySize,
	}
}

// WithHTTPBaseURL sets the origin relative URLs resolve against.
// An unparsable base is ignored.
func WithHTTPBaseURL(base string) HTTPOption {
	return func(c *httpConfig) {
		if base == "" {
			return
		}
		if u, err := url.Parse(base); err == nil && u.IsAbs() {
			c.baseURL = u
		}
	}
}

// WithHTTPRequestTimeout sets the default request timeout.
func WithHTTPRequestTimeout(d time.Duration) HTTPOption {
	return func(c *httpConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPMaxBodySize sets the maximum response body kept.
func WithHTTPMaxBodySize(size int) HTTPOption {
	return func(c *httpConfig) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithHTTPClient sets the client used to perform requests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *httpConfig) {
		c.client = client
	}
}

// WithHTTPPolicy restricts the hosts requests and their redirects may reach.
func WithHTTPPolicy(p *policy.Policy) HTTPOption {
	return func(c *httpConfig) {
		c.policy = p
	}
}

// PerformHTTPRequest performs an HTTP request on behalf of a program.
func PerformHTTPRequest(ctx context.Context, req HTTPRequest, opts ...HTTPOption) HTTPResponse {
	cfg := defaultHTTPConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if req.Timeout > 0 {
		cfg.timeout = time.Duration(req.Timeout) * time.Millisecond
	}

	target, herr := resolveHTTPRequest(&req, cfg.baseURL)
	if herr != nil {
		return HTTPResponse{Error: herr}
	}
	if !cfg.policy.CheckURL(target) {
		return HTTPResponse{Error: forbidden(target)}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	return executeHTTPRequest(ctx, req, target, cfg)
}

// resolveHTTPRequest applies defaults and resolves the target URL.
func resolveHTTPRequest(req *HTTPRequest, base *url.URL) (*url.URL, *HTTPError) {
	if req.URL == "" {
		return nil, &HTTPError{Code: "INVALID_REQUEST", Message: "URL is required"}
	}
	if req.Method == "" {
		req.Method = http.MethodPost
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, &HTTPError{Code: "INVALID_REQUEST", Message: err.Error()}
	}
	if !u.IsAbs() {
		if base == nil {
			return nil, &HTTPError{Code: "INVALID_REQUEST", Message: fmt.Sprintf("relative URL %q without a base URL", req.URL)}
		}
		u = base.ResolveReference(u)
	}
	return u, nil
}

func forbidden(u *url.URL) *HTTPError {
	return &HTTPError{Code: "FORBIDDEN", Message: fmt.Sprintf("host %s is not allowed", u.Host)}
}

// errForbiddenRedirect stops a redirect to a host outside the policy.
type errForbiddenRedirect struct {
	herr *HTTPError
}

func (e *errForbiddenRedirect) Error() string {
	return e.herr.Message
}

func executeHTTPRequest(ctx context.Context, req HTTPRequest, target *url.URL, cfg httpConfig) HTTPResponse {
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(req.Method), target.String(), body)
	if err != nil {
		return HTTPResponse{Error: &HTTPError{Code: "INVALID_REQUEST", Message: err.Error()}}
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Body != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	client := cfg.client
	if client == nil {
		client = &http.Client{Timeout: cfg.timeout}
	}
	if !cfg.policy.Unrestricted() {
		c := *client
		c.CheckRedirect = func(r *http.Request, via []*http.Request) error {
			if !cfg.policy.CheckURL(r.URL) {
				return &errForbiddenRedirect{herr: forbidden(r.URL)}
			}
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		}
		client = &c
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		var denied *errForbiddenRedirect
		if errors.As(err, &denied) {
			return HTTPResponse{LatencyMs: latency.Milliseconds(), Error: denied.herr}
		}
		return handleHTTPError(ctx, err, latency)
	}
	defer func() { _ = resp.Body.Close() }()

	return readHTTPResponse(resp, latency, cfg.maxBodySize)
}

// handleHTTPError classifies a transport failure.
func handleHTTPError(ctx context.Context, err error, latency time.Duration) HTTPResponse {
	code := "REQUEST_FAILED"
	var netErr interface{ Timeout() bool }
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		code = "TIMEOUT"
	case strings.Contains(err.Error(), "no such host"):
		code = "HOST_NOT_FOUND"
	case strings.Contains(err.Error(), "connection refused"):
		code = "CONNECTION_REFUSED"
	}

	return HTTPResponse{
		LatencyMs: latency.Milliseconds(),
		Error:     &HTTPError{Code: code, Message: err.Error()},
	}
}

func readHTTPResponse(resp *http.Response, latency time.Duration, maxBodySize int) HTTPResponse {
	buf := NewBoundedBuffer(maxBodySize)
	out := HTTPResponse{
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		LatencyMs:   latency.Milliseconds(),
	}

	if _, err := io.Copy(buf, resp.Body); err != nil {
		out.Error = &HTTPError{Code: "READ_BODY_FAILED", Message: err.Error()}
		return out
	}

	out.Body = buf.String()
	out.BodyTruncated = buf.Truncated()
	return out
}
