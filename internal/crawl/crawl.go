// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl discovers and saves PDF documents reachable from a set of
// starting addresses.
//
// The engine pops an address from the frontier, tries the journal
// direct-download shortcut, resolves redirects, fetches the result and
// dispatches on its media type: documents are saved, pages are mined for
// links, anything else is skipped. Failures are reported as events and
// never stop the crawl; only cancellation of the context passed to Run
// does, and it is honoured between addresses, never mid-fetch.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdiddy/pdfdl/internal/acquire"
	"github.com/pdiddy/pdfdl/internal/frontier"
	"github.com/pdiddy/pdfdl/internal/httputil"
	"github.com/pdiddy/pdfdl/internal/links"
	"github.com/pdiddy/pdfdl/internal/rewrite"
	"github.com/pdiddy/pdfdl/pkg/types"
)

// ErrInterrupted is returned by Run when its context is cancelled.
var ErrInterrupted = errors.New("crawl interrupted")

const defaultMaxPageBytes = 10 << 20

// Resolver maps an address to its final redirect target. It must not fail.
type Resolver interface {
	Resolve(ctx context.Context, addr string) string
}

// Fetcher issues a GET that follows redirects. Non-2xx responses are errors.
type Fetcher interface {
	Get(ctx context.Context, addr string) (*http.Response, error)
}

// Saver writes a document response to storage. It returns
// acquire.ErrExists when the target is already present.
type Saver interface {
	Save(resp *http.Response, source, referrer string) (*types.Document, error)
}

// Recorder is notified of every saved document.
type Recorder interface {
	Record(ctx context.Context, doc *types.Document) error
}

// EventHandler consumes crawl events.
type EventHandler interface {
	Handle(types.Event)
}

// EventFunc adapts a function to EventHandler.
type EventFunc func(types.Event)

// Handle calls f(ev).
func (f EventFunc) Handle(ev types.Event) { f(ev) }

// Summary holds the outcome of a crawl.
type Summary struct {
	Saved     int
	Skipped   int
	Failed    int
	Pages     int
	Documents []*types.Document
}

// Total returns the number of documents saved, skipped, or failed.
func (s Summary) Total() int {
	return s.Saved + s.Skipped + s.Failed
}

// HasFailures reports whether any fetch or save failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Options configures an Engine. Resolver, Fetcher and Saver are required.
type Options struct {
	Resolver Resolver
	Fetcher  Fetcher
	Saver    Saver
	Recorder Recorder
	Events   EventHandler
	Logger   *slog.Logger

	// MaxPageBytes caps how much of an HTML page is parsed (default 10 MiB).
	MaxPageBytes int64
}

// Engine runs crawls. An Engine is not safe for concurrent Run calls.
type Engine struct {
	resolver     Resolver
	fetcher      Fetcher
	saver        Saver
	recorder     Recorder
	events       EventHandler
	logger       *slog.Logger
	maxPageBytes int64
}

// New builds an Engine from opts.
func New(opts Options) *Engine {
	e := &Engine{
		resolver:     opts.Resolver,
		fetcher:      opts.Fetcher,
		saver:        opts.Saver,
		recorder:     opts.Recorder,
		events:       opts.Events,
		logger:       opts.Logger,
		maxPageBytes: opts.MaxPageBytes,
	}
	if e.events == nil {
		e.events = EventFunc(func(types.Event) {})
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.maxPageBytes <= 0 {
		e.maxPageBytes = defaultMaxPageBytes
	}
	return e
}

// run holds the state of one Run call.
type run struct {
	*Engine
	f         *frontier.Frontier
	referrers map[string]string
	summary   Summary
}

// Run crawls from seeds until the frontier is empty or ctx is cancelled.
// Cancellation is checked before each address is popped; requests already
// in flight complete so no download is cut short. On cancellation the
// summary so far is returned together with ErrInterrupted.
func (e *Engine) Run(ctx context.Context, seeds []string) (Summary, error) {
	r := &run{
		Engine:    e,
		f:         frontier.New(seeds),
		referrers: make(map[string]string),
	}
	ioCtx := context.WithoutCancel(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return r.summary, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		addr, ok := r.f.Pop()
		if !ok {
			break
		}
		addr = strings.TrimSpace(addr)
		if addr == "" || r.f.IsVisited(addr) {
			continue
		}

		if r.tryDirect(ioCtx, addr) {
			continue
		}

		resolved := r.resolver.Resolve(ioCtx, addr)
		if !r.f.MarkVisited(resolved) {
			e.logger.Debug("redirect target already visited", "url", addr, "resolved", resolved)
			continue
		}
		r.visit(ioCtx, resolved, r.referrers[addr])
	}
	return r.summary, nil
}

// tryDirect attempts the journal direct-download shortcut for addr. It
// reports true when a PDF was obtained and addr needs no further work.
// Every other outcome falls through silently to normal processing.
func (r *run) tryDirect(ctx context.Context, addr string) bool {
	derived, ok := rewrite.DownloadURL(addr)
	if !ok {
		return false
	}
	target := r.resolver.Resolve(ctx, derived)
	if r.f.IsVisited(target) {
		return false
	}
	r.emit(types.Event{Kind: types.EventDirectAttempt, URL: target})

	resp, err := r.fetcher.Get(ctx, target)
	if err != nil {
		r.logger.Debug("direct download attempt failed", "url", target, "error", err)
		return false
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); Classify(ct) != Document {
		r.logger.Debug("direct download is not a PDF", "url", target, "content_type", ct)
		return false
	}

	r.f.MarkVisited(target)
	r.f.MarkVisited(addr)
	r.save(ctx, resp, target, r.referrers[addr])
	return true
}

// visit fetches addr and dispatches on its media type.
func (r *run) visit(ctx context.Context, addr, referrer string) {
	r.emit(types.Event{Kind: types.EventProcessing, URL: addr})

	resp, err := r.fetcher.Get(ctx, addr)
	if err != nil {
		r.fail(addr, err)
		return
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	switch Classify(ct) {
	case Document:
		r.save(ctx, resp, addr, referrer)
	case Page:
		r.summary.Pages++
		r.extract(ctx, httputil.FinalURL(resp, addr), resp.Body)
	default:
		r.emit(types.Event{Kind: types.EventUnhandledType, URL: addr, ContentType: ct})
	}
}

// extract mines a page for links. Direct-download links are fetched on the
// spot; candidate links are pushed to the front of the frontier as one
// block in page order.
func (r *run) extract(ctx context.Context, page string, body io.Reader) {
	found, err := links.Extract(page, io.LimitReader(body, r.maxPageBytes))
	if err != nil {
		r.fail(page, err)
		return
	}

	var fresh []string
	direct := 0
	batch := make(map[string]struct{})
	for _, l := range found {
		switch l.Kind {
		case links.Direct:
			target := r.resolver.Resolve(ctx, l.URL)
			if !r.f.MarkVisited(target) {
				continue
			}
			direct++
			r.emit(types.Event{Kind: types.EventLinkFound, URL: target, Direct: true})
			r.download(ctx, target, page)
		case links.Candidate:
			if _, dup := batch[l.URL]; dup || r.f.Seen(l.URL) {
				continue
			}
			batch[l.URL] = struct{}{}
			fresh = append(fresh, l.URL)
			if _, ok := r.referrers[l.URL]; !ok {
				r.referrers[l.URL] = page
			}
			r.emit(types.Event{Kind: types.EventLinkFound, URL: l.URL})
		}
	}

	if direct == 0 && len(fresh) == 0 {
		r.emit(types.Event{Kind: types.EventNoLinks, URL: page})
	}
	r.f.PushFront(fresh...)
}

// download fetches a direct-download link and saves whatever it returns.
func (r *run) download(ctx context.Context, addr, referrer string) {
	resp, err := r.fetcher.Get(ctx, addr)
	if err != nil {
		r.fail(addr, err)
		return
	}
	defer resp.Body.Close()
	r.save(ctx, resp, addr, referrer)
}

func (r *run) save(ctx context.Context, resp *http.Response, source, referrer string) {
	doc, err := r.saver.Save(resp, source, referrer)
	switch {
	case errors.Is(err, acquire.ErrExists):
		r.summary.Skipped++
		r.emit(types.Event{Kind: types.EventFileSkipped, URL: source, Path: docPath(doc)})
	case err != nil:
		r.summary.Failed++
		r.logger.Debug("save failed", "url", source, "error", err)
		r.emit(types.Event{Kind: types.EventSaveFailed, URL: source, Path: docPath(doc), Err: err})
	default:
		r.summary.Saved++
		r.summary.Documents = append(r.summary.Documents, doc)
		r.emit(types.Event{Kind: types.EventDocumentSaved, URL: source, Document: doc})
		if r.recorder != nil {
			if err := r.recorder.Record(ctx, doc); err != nil {
				r.logger.Warn("catalog record failed", "name", doc.Name, "error", err)
			}
		}
	}
}

func (r *run) fail(addr string, err error) {
	r.summary.Failed++
	r.logger.Debug("fetch failed", "url", addr, "error", err)
	r.emit(types.Event{Kind: types.EventFetchFailed, URL: addr, Err: err})
}

func (r *run) emit(ev types.Event) {
	r.events.Handle(ev)
}

func docPath(doc *types.Document) string {
	if doc == nil {
		return ""
	}
	return doc.Path
}
