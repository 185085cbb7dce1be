// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package links mines an HTML page for anchors that point at documents.
package links

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Kind classifies an extracted link.
type Kind int

const (
	// Candidate is an anchor heuristically believed to point at a PDF.
	// Candidates are queued and visited later.
	Candidate Kind = iota
	// Direct is an anchor explicitly marked as a download. Direct links
	// are fetched immediately.
	Direct
)

func (k Kind) String() string {
	switch k {
	case Candidate:
		return "candidate"
	case Direct:
		return "direct"
	default:
		return "unknown"
	}
}

// Link is an absolute address found on a page.
type Link struct {
	Kind Kind
	URL  string
}

// Extract parses body as HTML and returns the document links it carries,
// in anchor order. Relative hrefs are resolved against base.
//
// An anchor with class "download" and a download attribute is Direct.
// Otherwise an anchor with class "pdf", or whose href ends in ".pdf", is a
// Candidate. Every other anchor is ignored, as are anchors that resolve to
// something other than http or https.
func Extract(base string, body io.Reader) ([]Link, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base address: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := baseURL.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}

		classes := strings.Fields(s.AttrOr("class", ""))
		_, hasDownload := s.Attr("download")
		switch {
		case hasClass(classes, "download") && hasDownload:
			out = append(out, Link{Kind: Direct, URL: abs.String()})
		case hasClass(classes, "pdf") || strings.HasSuffix(strings.ToLower(href), ".pdf"):
			out = append(out, Link{Kind: Candidate, URL: abs.String()})
		}
	})
	return out, nil
}

func hasClass(classes []string, name string) bool {
	for _, c := range classes {
		if c == name {
			return true
		}
	}
	return false
}
