package transport

import (
	"net"
	"net/http"
	"time"

	"github.com/patientrisk/patientrisk/internal/config"
)

// UserAgent is sent on every request.
const UserAgent = "patientrisk-assessor/1.0"

// authRoundTripper injects the API key and user agent into every outgoing request.
type authRoundTripper struct {
	base   http.RoundTripper
	header string
	key    string
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.key != "" {
		req.Header.Set(t.header, t.key)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
	return t.base.RoundTrip(req)
}

// NewClient returns an http.Client for the assessment service. apiKey is sent
// in the header named by api.Auth.Header; each request is bounded by api.Timeout.
func NewClient(api config.APIConfig, apiKey string) *http.Client {
	return wrap(&http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}, api, apiKey)
}

// WithBase is NewClient over a caller-supplied RoundTripper, e.g. the
// transport of an httptest.Server.
func WithBase(base http.RoundTripper, api config.APIConfig, apiKey string) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return wrap(base, api, apiKey)
}

func wrap(base http.RoundTripper, api config.APIConfig, apiKey string) *http.Client {
	header := api.Auth.Header
	if header == "" {
		header = config.DefaultKeyHeader
	}
	timeout := api.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &http.Client{
		Transport: &authRoundTripper{base: base, header: header, key: apiKey},
		Timeout:   timeout,
	}
}
