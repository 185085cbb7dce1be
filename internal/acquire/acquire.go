// Package acquire writes fetched documents to the output directory.
package acquire

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfdl/internal/httputil"
	"github.com/pdiddy/pdfdl/pkg/types"
)

// ErrExists is returned by Save when the target file is already present
// and overwriting is disabled. Nothing is written in that case.
var ErrExists = errors.New("file already exists")

const metadataExt = ".yaml"

// Saver streams response bodies into files under a directory.
type Saver struct {
	dir       string
	overwrite bool
	metadata  bool
	runID     string
	now       func() time.Time
}

// NewSaver returns a Saver configured from cfg. runID is stamped on every
// Document record.
func NewSaver(cfg types.CrawlConfig, runID string) *Saver {
	dir := cfg.OutputDir
	if dir == "" {
		dir = "."
	}
	return &Saver{
		dir:       dir,
		overwrite: cfg.Overwrite,
		metadata:  cfg.WriteMetadata,
		runID:     runID,
		now:       time.Now,
	}
}

// Save writes resp's body to the output directory under the name derived
// from its headers and final URL. source is the address the request was
// issued for and referrer the page that linked to it, if any.
//
// The returned Document always carries Name and Path, including when the
// error is ErrExists. The body is written to a temporary file that is
// renamed into place only after the copy succeeds, so an interrupted
// download never leaves a truncated file behind. The caller still owns
// and must close resp.Body.
func (s *Saver) Save(resp *http.Response, source, referrer string) (*types.Document, error) {
	final := httputil.FinalURL(resp, source)
	name := Filename(resp.Header, final)
	path := filepath.Join(s.dir, name)

	doc := &types.Document{
		Name:        name,
		SourceURL:   source,
		FinalURL:    final,
		Referrer:    referrer,
		Path:        path,
		ContentType: resp.Header.Get("Content-Type"),
		RunID:       s.runID,
	}

	if !s.overwrite {
		if _, err := os.Stat(path); err == nil {
			return doc, ErrExists
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return doc, fmt.Errorf("creating directory %s: %w", s.dir, err)
	}

	n, err := writeAtomic(resp.Body, path)
	if err != nil {
		return doc, err
	}
	doc.Bytes = n
	doc.SavedAt = s.now()

	if s.metadata {
		if err := writeMetadata(doc, path+metadataExt); err != nil {
			return doc, fmt.Errorf("writing metadata for %s: %w", name, err)
		}
	}
	return doc, nil
}

// writeAtomic copies r to destPath through a temporary file in the same
// directory and returns the number of bytes written.
func writeAtomic(r io.Reader, destPath string) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".pdfdl-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, r)
	if copyErr == nil {
		copyErr = tmpFile.Chmod(0o644)
	}
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}

// writeMetadata writes a Document record to a YAML file.
func writeMetadata(doc *types.Document, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMetadata reads a Document record from a YAML file.
func ReadMetadata(path string) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc types.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
