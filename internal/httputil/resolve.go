// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/pdiddy/pdfdl/pkg/types"
)

const defaultResolveCacheSize = 1024

// Resolver maps an address to the address it finally redirects to.
type Resolver struct {
	http      *http.Client
	userAgent string
	timeout   time.Duration
	cache     *lru.Cache
}

// NewResolver returns a Resolver backed by hc. cacheSize 0 selects the
// default size and a negative value disables memoization.
func NewResolver(hc *http.Client, cfg types.HTTPConfig, cacheSize int) (*Resolver, error) {
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := cfg.ResolveTimeout
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	r := &Resolver{http: hc, userAgent: cfg.UserAgent, timeout: timeout}

	if cacheSize == 0 {
		cacheSize = defaultResolveCacheSize
	}
	if cacheSize > 0 {
		c, err := lru.New(cacheSize)
		if err != nil {
			return nil, err
		}
		r.cache = c
	}
	return r, nil
}

// Resolve issues a HEAD request for addr, following redirects, and returns
// the final address. Any transport failure yields addr unchanged. The
// response status is not inspected: a 405 on HEAD still tells us where the
// redirect chain ended.
func (r *Resolver) Resolve(ctx context.Context, addr string) string {
	if r.cache != nil {
		if v, ok := r.cache.Get(addr); ok {
			return v.(string)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, addr, nil)
	if err != nil {
		return addr
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.http.Do(req)
	if err != nil {
		return addr
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	final := FinalURL(resp, addr)
	if r.cache != nil {
		r.cache.Add(addr, final)
	}
	return final
}
