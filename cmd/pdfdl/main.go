// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfdl CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfdl/internal/crawl"
)

// version is set at build time via ldflags.
var version = "dev"

// exitInterrupted is the conventional status for a SIGINT-terminated run.
const exitInterrupted = 130

// rootCmd crawls the given URLs for PDF documents.
var rootCmd = &cobra.Command{
	Use:   "pdfdl [URL...]",
	Short: "Crawl web pages to find and download PDF files",
	Long: `pdfdl starts from one or more URLs, follows links that look like PDF
documents, and saves every PDF it reaches into the output directory.

Journal article pages of the form /<journal>/article/view/<id>/<rev> are
first tried at their /article/download/ address. Links marked with class
"download" and a download attribute are fetched immediately; links with
class "pdf" or a .pdf suffix are queued ahead of older work.`,
	Example: `  pdfdl https://example.com/articles -o downloads
  pdfdl -i url_list.txt --overwrite
  pdfdl https://example.com/view/123 -o ./pdfs --overwrite`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCrawl,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfdl.yaml or ~/.config/pdfdl/pdfdl.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "diagnostic log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit diagnostic logs as JSON")
	rootCmd.PersistentFlags().String("catalog-driver", "", "record saved documents in a database: sqlite3 or postgres")
	rootCmd.PersistentFlags().String("catalog-dsn", "", "catalog data source (sqlite3: file path)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory holding a catalog-dsn file, used when --catalog-dsn is empty")

	f := rootCmd.Flags()
	f.StringP("input-file", "i", "", "text file with starting URLs, one per line")
	f.StringP("output-dir", "o", ".", "directory to save downloaded PDF files")
	f.String("user-agent", defaultUserAgent(), "User-Agent header for HTTP requests")
	f.Bool("overwrite", false, "overwrite files that already exist")
	f.Bool("metadata", false, "write a YAML record next to each saved PDF")
	f.Int("max-retries", 0, "retries on HTTP 429 (default 2, negative disables)")
	f.Duration("resolve-timeout", 0, "redirect resolution timeout (default 10s)")
	f.Duration("fetch-timeout", 0, "time to wait for response headers (default 30s)")

	bindFlags(rootCmd, map[string]string{
		"output_dir":      "output-dir",
		"user_agent":      "user-agent",
		"overwrite":       "overwrite",
		"metadata":        "metadata",
		"max_retries":     "max-retries",
		"resolve_timeout": "resolve-timeout",
		"fetch_timeout":   "fetch-timeout",
	})
	bindPersistentFlags(rootCmd, map[string]string{
		"log.level":           "log-level",
		"log.json":            "log-json",
		"catalog.driver":      "catalog-driver",
		"catalog.dsn":         "catalog-dsn",
		"catalog.secrets_dir": "secrets-dir",
	})
}

func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		viper.BindPFlag(key, cmd.Flags().Lookup(name))
	}
}

func bindPersistentFlags(cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		viper.BindPFlag(key, cmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfdl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfdl"))
		}
	}

	viper.SetEnvPrefix("PDFDL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, crawl.ErrInterrupted) {
			fmt.Fprintln(os.Stderr, "\nwarning: interrupted by user, exiting")
			os.Exit(exitInterrupted)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
