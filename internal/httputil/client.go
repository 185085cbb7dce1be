// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/pdfdl/pkg/types"
)

const (
	// DefaultFetchTimeout bounds the wait for response headers on a GET and
	// each later wait for body bytes.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultResolveTimeout bounds a whole redirect-resolution probe.
	DefaultResolveTimeout = 10 * time.Second

	acceptEncoding = "gzip, deflate, br"
)

// StatusError reports a response with a non-2xx status code.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.Code, e.URL)
}

// Client issues streamed GET requests carrying the configured User-Agent.
type Client struct {
	http       *http.Client
	userAgent  string
	timeout    time.Duration
	maxRetries int
}

// NewClient returns a Client backed by hc. A nil hc uses a client that
// follows redirects with the standard library's default limit.
func NewClient(hc *http.Client, cfg types.HTTPConfig) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Client{
		http:       hc,
		userAgent:  cfg.UserAgent,
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
	}
}

// Get fetches rawURL, following redirects. The timeout bounds the wait for
// response headers and then every gap between body reads, so a server that
// stops sending fails the read instead of stalling it. The returned body is
// already decoded from any content encoding and must be closed by the
// caller. Non-2xx responses are closed and reported as *StatusError.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", acceptEncoding)

	reqCtx, cancel := context.WithCancel(ctx)
	idle := newIdleTimer(c.timeout, cancel)
	resp, err := DoWithRetry(reqCtx, c.http, req, c.maxRetries)
	if !idle.stop() {
		if err == nil {
			resp.Body.Close()
			err = reqCtx.Err()
		}
		cancel()
		return nil, fmt.Errorf("HTTP request: no response within %s: %w", c.timeout, err)
	}
	if err != nil {
		cancel()
		return nil, fmt.Errorf("HTTP request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cancel()
		return nil, &StatusError{Code: resp.StatusCode, URL: FinalURL(resp, rawURL)}
	}

	resp.Body = &idleBody{ReadCloser: resp.Body, idle: idle}
	idle.reset()
	if err := decodeBody(resp); err != nil {
		resp.Body.Close()
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// FinalURL returns the address resp was served from after redirects,
// falling back to requested.
func FinalURL(resp *http.Response, requested string) string {
	if resp != nil && resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return requested
}
