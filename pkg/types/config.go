package types

import "time"

// HTTPConfig holds shared HTTP settings used for every request the crawler makes.
type HTTPConfig struct {
	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// ResolveTimeout bounds a single redirect-resolution probe (default 10s).
	ResolveTimeout time.Duration `json:"resolve_timeout" yaml:"resolve_timeout"`

	// FetchTimeout bounds a single page or document fetch (default 30s).
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout"`

	// MaxRetries is the number of retries on HTTP 429 before giving up (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// CrawlConfig holds settings for a crawl run.
type CrawlConfig struct {
	HTTPConfig `yaml:",inline"`

	// OutputDir is the directory saved documents are written to (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Overwrite replaces existing files instead of skipping them.
	Overwrite bool `json:"overwrite" yaml:"overwrite"`

	// WriteMetadata writes a YAML record next to every saved document.
	WriteMetadata bool `json:"write_metadata" yaml:"write_metadata"`

	// MaxPageBytes caps how much of an HTML page is read for link extraction (default 10 MiB).
	MaxPageBytes int64 `json:"max_page_bytes" yaml:"max_page_bytes"`

	// ResolveCacheSize is the number of redirect resolutions remembered
	// (default 1024, negative disables the cache).
	ResolveCacheSize int `json:"resolve_cache_size" yaml:"resolve_cache_size"`
}

// CatalogConfig selects the optional database that records saved documents.
type CatalogConfig struct {
	// Driver is "sqlite3" or "postgres". Empty disables the catalog.
	Driver string `json:"driver" yaml:"driver"`

	// DSN is the driver-specific data source name.
	DSN string `json:"dsn" yaml:"dsn"`

	// SecretsDir is searched for a catalog-dsn file when DSN is empty.
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir"`
}

// Enabled reports whether a catalog is configured.
func (c CatalogConfig) Enabled() bool {
	return c.Driver != "" && c.DSN != ""
}

// LoggingConfig selects diagnostic log verbosity and format.
type LoggingConfig struct {
	Level      string `json:"level" yaml:"level"`
	Structured bool   `json:"structured" yaml:"structured"`
}

// Config groups all settings for the CLI.
type Config struct {
	Crawl   CrawlConfig   `json:"crawl" yaml:"crawl"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}
