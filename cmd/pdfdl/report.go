// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/pdiddy/pdfdl/internal/crawl"
	"github.com/pdiddy/pdfdl/pkg/types"
)

// reporter renders crawl events as one status line each.
type reporter struct {
	w io.Writer
}

func newReporter(w io.Writer) *reporter {
	return &reporter{w: w}
}

// Handle implements crawl.EventHandler.
func (r *reporter) Handle(ev types.Event) {
	switch ev.Kind {
	case types.EventProcessing:
		fmt.Fprintf(r.w, "\nprocessing: %s\n", ev.URL)
	case types.EventDirectAttempt:
		fmt.Fprintf(r.w, "\ntrying direct download: %s\n", ev.URL)
	case types.EventLinkFound:
		if ev.Direct {
			fmt.Fprintf(r.w, "  direct PDF link: %s\n", ev.URL)
		} else {
			fmt.Fprintf(r.w, "  found: %s\n", ev.URL)
		}
	case types.EventNoLinks:
		fmt.Fprintf(r.w, "  warning: no new PDF links on %s\n", ev.URL)
	case types.EventDocumentSaved:
		fmt.Fprintf(r.w, "downloaded: %s (%d bytes)\n", ev.Document.Path, ev.Document.Bytes)
	case types.EventFileSkipped:
		fmt.Fprintf(r.w, "skipped: %s (already exists, use --overwrite to replace)\n", ev.Path)
	case types.EventUnhandledType:
		fmt.Fprintf(r.w, "skipped: %s (unhandled content type %q)\n", ev.URL, ev.ContentType)
	case types.EventFetchFailed:
		fmt.Fprintf(r.w, "failed:  %s (%v)\n", ev.URL, ev.Err)
	case types.EventSaveFailed:
		fmt.Fprintf(r.w, "failed:  %s -> %s (%v)\n", ev.URL, ev.Path, ev.Err)
	}
}

func printSummary(w io.Writer, s crawl.Summary) {
	fmt.Fprintf(w, "\nCrawl summary: %d saved, %d skipped, %d failed (pages: %d)\n",
		s.Saved, s.Skipped, s.Failed, s.Pages)
}
