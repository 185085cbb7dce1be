// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/andybalholm/brotli"
)

// decodeBody replaces resp.Body with a reader that undoes the declared
// Content-Encoding. Unknown encodings are passed through untouched.
func decodeBody(resp *http.Response) error {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	var reader io.Reader
	closers := []io.Closer{resp.Body}

	switch encoding {
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("gzip decode: %w", err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	default:
		return nil
	}

	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Body = &multiCloser{Reader: reader, closers: closers}
	return nil
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// idleTimer cancels a request when no progress is made for d.
type idleTimer struct {
	d     time.Duration
	t     *time.Timer
	fired atomic.Bool
}

func newIdleTimer(d time.Duration, cancel context.CancelFunc) *idleTimer {
	it := &idleTimer{d: d}
	it.t = time.AfterFunc(d, func() {
		it.fired.Store(true)
		cancel()
	})
	return it
}

// stop disarms the timer and reports whether it had not yet fired.
func (it *idleTimer) stop() bool {
	return it.t.Stop() && !it.fired.Load()
}

func (it *idleTimer) reset() {
	if !it.fired.Load() {
		it.t.Reset(it.d)
	}
}

// idleBody restarts the idle timer on every read that returns data.
type idleBody struct {
	io.ReadCloser
	idle *idleTimer
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && b.idle.fired.Load() {
		return n, fmt.Errorf("no data received within %s: %w", b.idle.d, err)
	}
	if n > 0 {
		b.idle.reset()
	}
	return n, err
}

func (b *idleBody) Close() error {
	b.idle.t.Stop()
	return b.ReadCloser.Close()
}
