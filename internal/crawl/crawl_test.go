// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfdl/internal/acquire"
	"github.com/pdiddy/pdfdl/internal/httputil"
	"github.com/pdiddy/pdfdl/pkg/types"
)

const fakePDFContent = "%PDF-1.4 fake"

// site is a scripted web server that records every GET it serves.
type site struct {
	mu   sync.Mutex
	gets []string
	mux  *http.ServeMux
	srv  *httptest.Server
}

func newSite(t *testing.T) *site {
	t.Helper()
	s := &site{mux: http.NewServeMux()}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			s.mu.Lock()
			s.gets = append(s.gets, r.URL.Path)
			s.mu.Unlock()
		}
		s.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *site) url(path string) string { return s.srv.URL + path }

func (s *site) page(path, html string) {
	s.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, html)
	})
}

func (s *site) pdf(path, disposition string) {
	s.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		if disposition != "" {
			w.Header().Set("Content-Disposition", disposition)
		}
		io.WriteString(w, fakePDFContent)
	})
}

func (s *site) redirect(from, to string) {
	s.mux.HandleFunc(from, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, to, http.StatusFound)
	})
}

func (s *site) status(path string, code int) {
	s.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	})
}

func (s *site) typed(path, contentType, body string) {
	s.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		io.WriteString(w, body)
	})
}

func (s *site) fetched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.gets...)
}

type recorder struct {
	docs []*types.Document
}

func (r *recorder) Record(_ context.Context, doc *types.Document) error {
	r.docs = append(r.docs, doc)
	return nil
}

type harness struct {
	site   *site
	dir    string
	events []types.Event
	rec    *recorder
	engine *Engine
	onEv   func(types.Event)
}

func newHarness(t *testing.T, overwrite bool) *harness {
	t.Helper()
	return newHarnessWithHTTP(t, overwrite, types.HTTPConfig{UserAgent: "pdfdl-test", MaxRetries: -1})
}

func newHarnessWithHTTP(t *testing.T, overwrite bool, cfg types.HTTPConfig) *harness {
	t.Helper()
	h := &harness{site: newSite(t), dir: t.TempDir(), rec: &recorder{}}

	resolver, err := httputil.NewResolver(h.site.srv.Client(), cfg, -1)
	require.NoError(t, err)

	h.engine = New(Options{
		Resolver: resolver,
		Fetcher:  httputil.NewClient(h.site.srv.Client(), cfg),
		Saver:    acquire.NewSaver(types.CrawlConfig{OutputDir: h.dir, Overwrite: overwrite}, "run-test"),
		Recorder: h.rec,
		Events: EventFunc(func(ev types.Event) {
			h.events = append(h.events, ev)
			if h.onEv != nil {
				h.onEv(ev)
			}
		}),
	})
	return h
}

func (h *harness) run(t *testing.T, seeds ...string) Summary {
	t.Helper()
	sum, err := h.engine.Run(context.Background(), seeds)
	require.NoError(t, err)
	return sum
}

func (h *harness) kinds(kind types.EventKind) []types.Event {
	var out []types.Event
	for _, ev := range h.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func TestRun_PrioritizesNewLinks(t *testing.T) {
	h := newHarness(t, false)
	h.site.page("/p", `<a href="/l1.pdf">one</a><a href="l2.pdf">two</a>`)
	h.site.pdf("/l1.pdf", "")
	h.site.pdf("/l2.pdf", "")
	h.site.pdf("/q1.pdf", "")

	sum := h.run(t, h.site.url("/p"), h.site.url("/q1.pdf"))

	assert.Equal(t, []string{"/p", "/l1.pdf", "/l2.pdf", "/q1.pdf"}, h.site.fetched())
	assert.Equal(t, 3, sum.Saved)
	assert.Equal(t, 1, sum.Pages)
	require.Len(t, sum.Documents, 3)
	assert.Equal(t, h.site.url("/p"), sum.Documents[0].Referrer)
	assert.Empty(t, sum.Documents[2].Referrer)
	assert.Len(t, h.rec.docs, 3)
}

func TestRun_NoDuplicateFetches(t *testing.T) {
	h := newHarness(t, false)
	h.site.page("/a", `
		<a href="doc.pdf">rel</a>
		<a href="/doc.pdf">abs</a>
		<a class="pdf" href="/b">b</a>`)
	h.site.page("/b", `
		<a href="/doc.pdf">again</a>
		<a href="/loop.pdf">loop</a>
		<a class="pdf" href="/a">back</a>`)
	h.site.redirect("/alias", "/a")
	h.site.redirect("/loop.pdf", "/doc.pdf")
	h.site.pdf("/doc.pdf", "")

	sum := h.run(t, h.site.url("/a"), h.site.url("/a"), h.site.url("/alias"))

	gets := h.site.fetched()
	seen := make(map[string]int)
	for _, g := range gets {
		seen[g]++
	}
	for path, n := range seen {
		assert.Equal(t, 1, n, "%s fetched %d times", path, n)
	}
	assert.NotContains(t, seen, "/alias")
	assert.NotContains(t, seen, "/loop.pdf")
	assert.Equal(t, 1, sum.Saved)
	assert.Equal(t, 0, sum.Failed)
}

func TestRun_DirectDownloadShortCircuit(t *testing.T) {
	h := newHarness(t, false)
	h.site.page("/journal/article/view/42/7", `<a href="/other.pdf">other</a>`)
	h.site.pdf("/journal/article/download/42/7", `attachment; filename="article 42.pdf"`)

	sum := h.run(t, h.site.url("/journal/article/view/42/7"))

	assert.Equal(t, []string{"/journal/article/download/42/7"}, h.site.fetched())
	assert.Equal(t, 1, sum.Saved)
	assert.Equal(t, 0, sum.Pages)
	assert.FileExists(t, filepath.Join(h.dir, "article 42.pdf"))

	attempts := h.kinds(types.EventDirectAttempt)
	require.Len(t, attempts, 1)
	assert.Equal(t, h.site.url("/journal/article/download/42/7"), attempts[0].URL)
	assert.Empty(t, h.kinds(types.EventProcessing))
}

func TestRun_DirectDownloadViewRevisitedIsSkipped(t *testing.T) {
	h := newHarness(t, false)
	h.site.pdf("/journal/article/download/42/7", "")

	view := h.site.url("/journal/article/view/42/7")
	sum := h.run(t, view, view)

	assert.Equal(t, []string{"/journal/article/download/42/7"}, h.site.fetched())
	assert.Equal(t, 1, sum.Saved)
}

func TestRun_RewriteFallback(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *site)
	}{
		{"not found", func(s *site) { s.status("/journal/article/download/42/7", http.StatusNotFound) }},
		{"not a pdf", func(s *site) { s.typed("/journal/article/download/42/7", "text/html", "<p>login</p>") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, false)
			tt.setup(h.site)
			h.site.page("/journal/article/view/42/7", `<a class="obj_galley_link pdf" href="/journal/article/download/42/7/99">PDF</a>`)
			h.site.pdf("/journal/article/download/42/7/99", "")

			sum := h.run(t, h.site.url("/journal/article/view/42/7"))

			assert.Equal(t, []string{
				"/journal/article/download/42/7",
				"/journal/article/view/42/7",
				"/journal/article/download/42/7/99",
			}, h.site.fetched())
			assert.Equal(t, 1, sum.Pages)
			assert.Equal(t, 1, sum.Saved)
			assert.Equal(t, 0, sum.Failed, "a failed shortcut is not a crawl failure")
			assert.Empty(t, h.kinds(types.EventFetchFailed))
		})
	}
}

func TestRun_DirectLinksFetchedImmediately(t *testing.T) {
	h := newHarness(t, false)
	h.site.page("/p", `
		<a href="/x.pdf">queued</a>
		<a href="/dl/1" class="btn download" download>now</a>
		<a href="/dl/1" class="download" download>dup</a>`)
	h.site.redirect("/dl/1", "/files/one.pdf")
	h.site.pdf("/files/one.pdf", "")
	h.site.pdf("/x.pdf", "")

	sum := h.run(t, h.site.url("/p"))

	assert.Equal(t, []string{"/p", "/files/one.pdf", "/x.pdf"}, h.site.fetched())
	assert.Equal(t, 2, sum.Saved)

	var direct []string
	for _, ev := range h.kinds(types.EventLinkFound) {
		if ev.Direct {
			direct = append(direct, ev.URL)
		}
	}
	assert.Equal(t, []string{h.site.url("/files/one.pdf")}, direct)
	assert.Equal(t, h.site.url("/p"), sum.Documents[0].Referrer)
}

func TestRun_DirectLinkFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, false)
	h.site.page("/p", `
		<a href="/broken" class="download" download>broken</a>
		<a href="/ok.pdf">ok</a>`)
	h.site.status("/broken", http.StatusInternalServerError)
	h.site.pdf("/ok.pdf", "")

	sum := h.run(t, h.site.url("/p"))

	assert.Equal(t, 1, sum.Saved)
	assert.Equal(t, 1, sum.Failed)
	failures := h.kinds(types.EventFetchFailed)
	require.Len(t, failures, 1)
	var se *httputil.StatusError
	assert.True(t, errors.As(failures[0].Err, &se))
}

func TestRun_UnhandledMediaType(t *testing.T) {
	h := newHarness(t, false)
	h.site.typed("/data.json", "application/json", `{}`)

	sum := h.run(t, h.site.url("/data.json"))

	assert.Equal(t, 0, sum.Total())
	unhandled := h.kinds(types.EventUnhandledType)
	require.Len(t, unhandled, 1)
	assert.Equal(t, "application/json", unhandled[0].ContentType)
}

func TestRun_PageWithoutLinks(t *testing.T) {
	h := newHarness(t, false)
	h.site.page("/empty", `<a href="/about">about</a>`)

	h.run(t, h.site.url("/empty"))

	noLinks := h.kinds(types.EventNoLinks)
	require.Len(t, noLinks, 1)
	assert.Equal(t, h.site.url("/empty"), noLinks[0].URL)
}

func TestRun_FailuresDoNotAbort(t *testing.T) {
	h := newHarness(t, false)
	h.site.status("/err", http.StatusInternalServerError)
	h.site.pdf("/ok.pdf", "")

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL + "/x"
	dead.Close()

	sum := h.run(t, h.site.url("/err"), deadURL, "", h.site.url("/ok.pdf"))

	assert.Equal(t, 1, sum.Saved)
	assert.Equal(t, 2, sum.Failed)
	assert.True(t, sum.HasFailures())
	assert.Len(t, h.kinds(types.EventFetchFailed), 2)
}

func TestRun_SkipsExistingFiles(t *testing.T) {
	h := newHarness(t, false)
	h.site.pdf("/report.pdf", "")
	target := filepath.Join(h.dir, "report.pdf")
	require.NoError(t, os.WriteFile(target, []byte("keep"), 0o644))

	sum := h.run(t, h.site.url("/report.pdf?x=1"))

	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 0, sum.Saved)
	skipped := h.kinds(types.EventFileSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, target, skipped[0].Path)
	assert.Empty(t, h.rec.docs)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestRun_OverwriteReplacesFiles(t *testing.T) {
	h := newHarness(t, true)
	h.site.pdf("/report.pdf", "")
	target := filepath.Join(h.dir, "report.pdf")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	sum := h.run(t, h.site.url("/report.pdf"))

	assert.Equal(t, 1, sum.Saved)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, fakePDFContent, string(data))
}

func TestRun_InterruptStopsBetweenAddresses(t *testing.T) {
	h := newHarness(t, false)
	h.site.pdf("/one.pdf", "")
	h.site.pdf("/two.pdf", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.onEv = func(ev types.Event) {
		if ev.Kind == types.EventProcessing {
			cancel()
		}
	}

	sum, err := h.engine.Run(ctx, []string{h.site.url("/one.pdf"), h.site.url("/two.pdf")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInterrupted))
	assert.True(t, errors.Is(err, context.Canceled))

	assert.Equal(t, []string{"/one.pdf"}, h.site.fetched())
	assert.Equal(t, 1, sum.Saved, "in-flight download completes")
	data, err := os.ReadFile(filepath.Join(h.dir, "one.pdf"))
	require.NoError(t, err)
	assert.Equal(t, fakePDFContent, string(data))
}

func TestRun_StalledDownloadIsAbandoned(t *testing.T) {
	h := newHarnessWithHTTP(t, false, types.HTTPConfig{
		UserAgent:    "pdfdl-test",
		MaxRetries:   -1,
		FetchTimeout: 100 * time.Millisecond,
	})
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	h.site.mux.HandleFunc("/stall.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, "%PDF")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	h.site.pdf("/next.pdf", "")

	done := make(chan Summary, 1)
	go func() {
		sum, _ := h.engine.Run(context.Background(), []string{h.site.url("/stall.pdf"), h.site.url("/next.pdf")})
		done <- sum
	}()

	var sum Summary
	select {
	case sum = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run blocked on a stalled response body")
	}

	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Saved)
	assert.NoFileExists(t, filepath.Join(h.dir, "stall.pdf"))
	assert.FileExists(t, filepath.Join(h.dir, "next.pdf"))
}

func TestRun_EmptySeeds(t *testing.T) {
	h := newHarness(t, false)
	sum := h.run(t)
	assert.Equal(t, Summary{}, sum)
	assert.Empty(t, h.site.fetched())
}

func TestSummary(t *testing.T) {
	s := Summary{Saved: 2, Skipped: 1, Failed: 3}
	assert.Equal(t, 6, s.Total())
	assert.True(t, s.HasFailures())
	assert.False(t, Summary{Saved: 1}.HasFailures())
}
