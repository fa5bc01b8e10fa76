package policy_test

import (
	"bytes"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nthnn/ura/domain/entities"
	"github.com/nthnn/ura/domain/policy"
)

func TestPolicy_CheckNetwork(t *testing.T) {
	p, err := policy.NewPolicy([]string{"example.com", "*.internal:443", "localhost:8000-8010"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  entities.NetworkRequest
		want bool
	}{
		{"Allowed host any port", entities.NetworkRequest{Host: "example.com", Port: 9999}, true},
		{"Host match ignores case", entities.NetworkRequest{Host: "Example.COM", Port: 80}, true},
		{"Allowed wildcard host", entities.NetworkRequest{Host: "svc.internal", Port: 443}, true},
		{"Wildcard host wrong port", entities.NetworkRequest{Host: "svc.internal", Port: 80}, false},
		{"Allowed range port", entities.NetworkRequest{Host: "localhost", Port: 8005}, true},
		{"Outside range", entities.NetworkRequest{Host: "localhost", Port: 8011}, false},
		{"Denied host", entities.NetworkRequest{Host: "google.com", Port: 80}, false},
		{"Wildcard does not match apex", entities.NetworkRequest{Host: "internal", Port: 443}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CheckNetwork(tt.req))
		})
	}
}

func TestPolicy_Unrestricted(t *testing.T) {
	p, err := policy.NewPolicy(nil)
	require.NoError(t, err)
	assert.True(t, p.Unrestricted())
	assert.True(t, p.CheckNetwork(entities.NetworkRequest{Host: "anything", Port: 1}))

	var nilPolicy *policy.Policy
	assert.True(t, nilPolicy.Unrestricted())
	assert.True(t, nilPolicy.CheckURL(&url.URL{Scheme: "http", Host: "x"}))
}

func TestPolicy_InvalidRules(t *testing.T) {
	for _, raw := range []string{"", "  ", "exa[mple.com", "example.com:0", "example.com:http", "example.com:90-80", "example.com:1-70000"} {
		t.Run(raw, func(t *testing.T) {
			_, err := policy.NewPolicy([]string{raw})
			assert.Error(t, err)
		})
	}
}

func TestPolicy_CheckURL(t *testing.T) {
	p, err := policy.NewPolicy([]string{"api.example.com:443", "[::1]:8080"})
	require.NoError(t, err)

	tests := []struct {
		raw  string
		want bool
	}{
		{"https://api.example.com/v1", true},
		{"http://api.example.com/v1", false},
		{"http://api.example.com:443/v1", true},
		{"http://[::1]:8080/", true},
		{"http://[::1]:8081/", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.CheckURL(u))
		})
	}
}

func TestRequestFor(t *testing.T) {
	u, _ := url.Parse("https://example.com/x")
	assert.Equal(t, entities.NetworkRequest{Host: "example.com", Port: 443}, policy.RequestFor(u))

	u, _ = url.Parse("http://example.com:8080/x")
	assert.Equal(t, entities.NetworkRequest{Host: "example.com", Port: 8080}, policy.RequestFor(u))
}

func TestLogDenialHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	p, err := policy.NewPolicy([]string{"example.com"}, policy.WithDenialHandler(&policy.LogDenialHandler{Logger: logger}))
	require.NoError(t, err)

	assert.False(t, p.CheckNetwork(entities.NetworkRequest{Host: "evil.com", Port: 80}))
	assert.Contains(t, buf.String(), "permission denied")
	assert.Contains(t, buf.String(), "kind=network")
	assert.Contains(t, buf.String(), "evil.com")
}
