// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rewrite recognizes journal-platform article pages and derives the
// address that usually serves the article's PDF directly.
package rewrite

import (
	"net/url"
	"regexp"
	"strings"
)

// articleViewPattern matches /{collection}/article/view/{submission}/{revision}
// anywhere in a path.
var articleViewPattern = regexp.MustCompile(`/([^/]+)/article/view/(\d+)/(\d+)`)

const (
	viewSegment     = "/article/view/"
	downloadSegment = "/article/download/"
)

// Match holds the identifiers captured from an article view path.
type Match struct {
	Collection string
	Submission string
	Revision   string
}

// Parse reports whether addr has an article view path. Only the path is
// inspected; query strings and fragments are ignored.
func Parse(addr string) (Match, bool) {
	u, err := url.Parse(addr)
	if err != nil {
		return Match{}, false
	}
	m := articleViewPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return Match{}, false
	}
	return Match{Collection: m[1], Submission: m[2], Revision: m[3]}, true
}

// DownloadURL returns the direct-download variant of an article view
// address, or false when addr does not match.
func DownloadURL(addr string) (string, bool) {
	if _, ok := Parse(addr); !ok {
		return "", false
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", false
	}
	u.Path = strings.Replace(u.Path, viewSegment, downloadSegment, 1)
	if u.RawPath != "" {
		u.RawPath = strings.Replace(u.RawPath, viewSegment, downloadSegment, 1)
	}
	return u.String(), true
}
