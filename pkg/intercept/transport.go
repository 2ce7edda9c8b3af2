// Package intercept redirects an application's outgoing HTTP calls into the
// mock engine without a network hop.
//
// Application code keeps calling real URLs; a Transport installed as the
// http.Client's RoundTripper serves any request under the mock base URL
// in-process and forwards everything else to the wrapped transport.
package intercept

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// Transport is an http.RoundTripper that answers requests matching the
// configured base URL from an in-process handler.
type Transport struct {
	base    http.RoundTripper
	target  *url.URL
	handler http.Handler
}

// Option customizes a Transport.
type Option func(*Transport)

// WithBase sets the transport used for requests that do not match the mock
// base URL. Defaults to http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) {
		if rt != nil {
			t.base = rt
		}
	}
}

// NewTransport creates a Transport serving baseURL from handler.
func NewTransport(baseURL string, handler http.Handler, opts ...Option) (*Transport, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if target.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	t := &Transport{
		base:    http.DefaultTransport,
		target:  target,
		handler: handler,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Client returns an http.Client that routes through this transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.matches(req.URL) {
		return t.base.RoundTrip(req)
	}

	rec := httptest.NewRecorder()
	t.handler.ServeHTTP(rec, req)

	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// matches reports whether the request URL falls under the mock base URL:
// same host (and scheme, when the base declares one) and a path under the
// base path.
func (t *Transport) matches(u *url.URL) bool {
	if u.Host != t.target.Host {
		return false
	}
	if t.target.Scheme != "" && u.Scheme != t.target.Scheme {
		return false
	}
	basePath := strings.TrimSuffix(t.target.Path, "/")
	return basePath == "" || u.Path == basePath || strings.HasPrefix(u.Path, basePath+"/")
}
