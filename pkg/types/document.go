// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Document describes a PDF saved to disk during a crawl.
type Document struct {
	// Name is the sanitized filename the document was saved under.
	Name string `json:"name" yaml:"name"`

	// SourceURL is the address the fetch was issued for.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// FinalURL is the address the response came from after redirects.
	FinalURL string `json:"final_url" yaml:"final_url"`

	// Referrer is the page the link was discovered on, empty for seeds
	// and rewritten article addresses.
	Referrer string `json:"referrer,omitempty" yaml:"referrer,omitempty"`

	// Path is the local filesystem path of the saved file.
	Path string `json:"path" yaml:"path"`

	// Bytes is the number of body bytes written.
	Bytes int64 `json:"bytes" yaml:"bytes"`

	// ContentType is the declared media type of the response.
	ContentType string `json:"content_type" yaml:"content_type"`

	// RunID identifies the crawl invocation that saved the document.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	// SavedAt is when the file was committed to disk.
	SavedAt time.Time `json:"saved_at" yaml:"saved_at"`
}
