// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"runtime"

	"github.com/spf13/viper"

	"github.com/pdiddy/pdfdl/internal/secrets"
	"github.com/pdiddy/pdfdl/pkg/types"
)

// loadConfig assembles the effective configuration. viper resolves each key
// from, in order: flag, PDFDL_* environment variable, config file, flag default.
func loadConfig(v *viper.Viper) types.Config {
	return types.Config{
		Crawl: types.CrawlConfig{
			HTTPConfig: types.HTTPConfig{
				UserAgent:      v.GetString("user_agent"),
				ResolveTimeout: v.GetDuration("resolve_timeout"),
				FetchTimeout:   v.GetDuration("fetch_timeout"),
				MaxRetries:     v.GetInt("max_retries"),
			},
			OutputDir:        v.GetString("output_dir"),
			Overwrite:        v.GetBool("overwrite"),
			WriteMetadata:    v.GetBool("metadata"),
			MaxPageBytes:     v.GetInt64("max_page_bytes"),
			ResolveCacheSize: v.GetInt("resolve_cache_size"),
		},
		Catalog: types.CatalogConfig{
			Driver:     v.GetString("catalog.driver"),
			DSN:        v.GetString("catalog.dsn"),
			SecretsDir: v.GetString("catalog.secrets_dir"),
		},
		Logging: types.LoggingConfig{
			Level:      v.GetString("log.level"),
			Structured: v.GetBool("log.json"),
		},
	}
}

// applySecrets fills an empty catalog DSN from the secrets directory.
func applySecrets(cfg *types.Config, warn io.Writer) error {
	if cfg.Catalog.DSN != "" || cfg.Catalog.SecretsDir == "" {
		return nil
	}
	loaded, err := secrets.Load(cfg.Catalog.SecretsDir, warn)
	if err != nil {
		return err
	}
	cfg.Catalog.DSN = loaded[secrets.CatalogDSN]
	return nil
}

const (
	macUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 " +
		"(KHTML, like Gecko) Version/18.3.1 Safari/605.1.15"
	linuxUserAgent   = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:15.0) Gecko/20100101 Firefox/15.0.1"
	windowsUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36 Edg/134.0.0.0"
)

// defaultUserAgent returns a browser User-Agent matching the host platform.
func defaultUserAgent() string {
	return userAgentFor(runtime.GOOS)
}

func userAgentFor(goos string) string {
	switch goos {
	case "darwin":
		return macUserAgent
	case "linux":
		return linuxUserAgent
	default:
		return windowsUserAgent
	}
}
