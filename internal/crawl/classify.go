// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import "strings"

// MediaClass is how the engine treats a response.
type MediaClass int

const (
	Unhandled MediaClass = iota
	Document
	Page
)

func (c MediaClass) String() string {
	switch c {
	case Document:
		return "document"
	case Page:
		return "page"
	default:
		return "unhandled"
	}
}

// Classify maps a declared Content-Type to a MediaClass by
// case-insensitive substring match.
func Classify(contentType string) MediaClass {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		return Document
	case strings.Contains(ct, "text/html"):
		return Page
	default:
		return Unhandled
	}
}
