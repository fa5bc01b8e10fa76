// Package policy decides which hosts programs may reach through the
// http_request host function.
package policy

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/domain/ports"
)

type policyConfig struct {
	denialHandler ports.DenialHandler
}

// PolicyOption configures the Policy.
type PolicyOption func(*policyConfig)

// WithDenialHandler sets the denial handler.
func WithDenialHandler(h ports.DenialHandler) PolicyOption {
	return func(c *policyConfig) {
		if h != nil {
			c.denialHandler = h
		}
	}
}

// Policy is a host allowlist. Each rule is "host", "host:port" or
// "host:lo-hi", where host is a glob pattern such as "*.example.com".
// A Policy without rules allows every host. A Policy is safe for
// concurrent use.
type Policy struct {
	config policyConfig
	rules  []rule
}

type rule struct {
	host  string
	ports []portRange
}

type portRange struct {
	min, max int
}

// NewPolicy compiles the rules. It fails on the first invalid rule.
func NewPolicy(rules []string, opts ...PolicyOption) (*Policy, error) {
	cfg := policyConfig{denialHandler: &NopDenialHandler{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Policy{config: cfg}
	for _, raw := range rules {
		r, err := parseRule(raw)
		if err != nil {
			return nil, err
		}
		p.rules = append(p.rules, r)
	}
	return p, nil
}

func parseRule(raw string) (rule, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return rule{}, fmt.Errorf("empty host rule")
	}

	host, portSpec := raw, "*"
	if i := strings.LastIndex(raw, ":"); i >= 0 && !strings.Contains(raw[i:], "]") {
		host, portSpec = raw[:i], raw[i+1:]
	}
	host = strings.Trim(host, "[]")
	if !doublestar.ValidatePattern(host) {
		return rule{}, fmt.Errorf("invalid host pattern %q", host)
	}

	r := rule{host: host}
	if portSpec == "*" {
		return r, nil
	}
	pr, err := parsePortRange(portSpec)
	if err != nil {
		return rule{}, fmt.Errorf("host rule %q: %w", raw, err)
	}
	r.ports = []portRange{pr}
	return r, nil
}

func parsePortRange(spec string) (portRange, error) {
	lo, hi, isRange := strings.Cut(spec, "-")
	min, err := strconv.Atoi(lo)
	if err != nil || min < 1 || min > 65535 {
		return portRange{}, fmt.Errorf("invalid port %q", lo)
	}
	if !isRange {
		return portRange{min: min, max: min}, nil
	}
	max, err := strconv.Atoi(hi)
	if err != nil || max < min || max > 65535 {
		return portRange{}, fmt.Errorf("invalid port range %q", spec)
	}
	return portRange{min: min, max: max}, nil
}

// Unrestricted reports whether the policy allows every host.
func (p *Policy) Unrestricted() bool {
	return p == nil || len(p.rules) == 0
}

// CheckNetwork reports whether req matches a rule.
func (p *Policy) CheckNetwork(req entities.NetworkRequest) bool {
	if p.Unrestricted() {
		return true
	}

	host := strings.ToLower(req.Host)
	for _, r := range p.rules {
		if matched, _ := doublestar.Match(r.host, host); !matched {
			continue
		}
		if len(r.ports) == 0 {
			return true
		}
		for _, pr := range r.ports {
			if req.Port >= pr.min && req.Port <= pr.max {
				return true
			}
		}
	}

	p.config.denialHandler.OnDenial("network", req, "host/port not allowed")
	return false
}

// CheckURL checks an absolute http(s) URL, defaulting the port from the scheme.
func (p *Policy) CheckURL(u *url.URL) bool {
	if p.Unrestricted() {
		return true
	}
	return p.CheckNetwork(RequestFor(u))
}

// RequestFor returns the NetworkRequest an http(s) URL makes.
func RequestFor(u *url.URL) entities.NetworkRequest {
	host := u.Hostname()
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		port = 80
		if u.Scheme == "https" {
			port = 443
		}
	}
	if ip := net.ParseIP(host); ip != nil {
		host = ip.String()
	}
	return entities.NetworkRequest{Host: host, Port: port}
}
