// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// FallbackName is used when neither the response headers nor the URL
// yield a usable filename.
const FallbackName = "downloaded.pdf"

var (
	extFilenamePattern   = regexp.MustCompile(`(?i)filename\*=UTF-8''([^;]+)`)
	plainFilenamePattern = regexp.MustCompile(`(?i)filename=([^;]+)`)
	unsafeChars          = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// Filename picks the name a response should be saved under. In priority
// order it uses the filename*= directive of Content-Disposition, the
// filename= directive, then the last path segment of finalURL. The result
// is percent-decoded and sanitized.
func Filename(header http.Header, finalURL string) string {
	name := ""
	if cd := header.Get("Content-Disposition"); cd != "" {
		if m := extFilenamePattern.FindStringSubmatch(cd); m != nil {
			name = strings.TrimSpace(m[1])
		} else if m := plainFilenamePattern.FindStringSubmatch(cd); m != nil {
			name = strings.Trim(strings.TrimSpace(m[1]), `"'`)
		}
	}
	if name == "" {
		name = lastSegment(finalURL)
	}
	if name == "" {
		name = FallbackName
	}
	return Sanitize(name)
}

// Sanitize percent-decodes name and replaces characters that are unsafe in
// filenames with underscores. Names that would address a directory fall
// back to FallbackName.
func Sanitize(name string) string {
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	name = unsafeChars.ReplaceAllString(name, "_")
	switch strings.TrimSpace(name) {
	case "", ".", "..":
		return FallbackName
	}
	return name
}

// lastSegment returns the still-escaped final path segment of rawURL,
// ignoring the query string. A trailing slash yields "".
func lastSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := u.EscapedPath()
	return p[strings.LastIndex(p, "/")+1:]
}
