// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EventKind identifies what happened during a crawl.
type EventKind int

const (
	// EventProcessing is emitted when a resolved address is about to be fetched.
	EventProcessing EventKind = iota
	// EventDirectAttempt is emitted before trying a rewritten download address.
	EventDirectAttempt
	// EventDocumentSaved is emitted after a document has been written to disk.
	EventDocumentSaved
	// EventFileSkipped is emitted when the target file exists and overwrite is off.
	EventFileSkipped
	// EventLinkFound is emitted for every accepted candidate or direct-download link.
	EventLinkFound
	// EventNoLinks is emitted when a page yields no new links.
	EventNoLinks
	// EventUnhandledType is emitted when a response is neither a PDF nor HTML.
	EventUnhandledType
	// EventFetchFailed is emitted when a request fails at the transport or HTTP level.
	EventFetchFailed
	// EventSaveFailed is emitted when a document cannot be written.
	EventSaveFailed
)

func (k EventKind) String() string {
	switch k {
	case EventProcessing:
		return "processing"
	case EventDirectAttempt:
		return "direct-attempt"
	case EventDocumentSaved:
		return "document-saved"
	case EventFileSkipped:
		return "file-skipped"
	case EventLinkFound:
		return "link-found"
	case EventNoLinks:
		return "no-links"
	case EventUnhandledType:
		return "unhandled-type"
	case EventFetchFailed:
		return "fetch-failed"
	case EventSaveFailed:
		return "save-failed"
	default:
		return "unknown"
	}
}

// Event is a structured notification from the crawl engine. Only the
// fields relevant to Kind are set.
type Event struct {
	Kind EventKind

	// URL is the address the event concerns.
	URL string

	// ContentType is set for EventUnhandledType.
	ContentType string

	// Direct is set on EventLinkFound for direct-download links.
	Direct bool

	// Document is set for EventDocumentSaved.
	Document *Document

	// Path is the target file for EventFileSkipped and EventSaveFailed.
	Path string

	// Err is the failure reason for EventFetchFailed and EventSaveFailed.
	Err error
}
