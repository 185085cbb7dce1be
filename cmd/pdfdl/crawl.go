// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfdl/internal/acquire"
	"github.com/pdiddy/pdfdl/internal/catalog"
	"github.com/pdiddy/pdfdl/internal/crawl"
	"github.com/pdiddy/pdfdl/internal/httputil"
)

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	out := cmd.OutOrStdout()

	logger, err := buildLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := applySecrets(&cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}

	var seeds []string
	if inputFile, _ := cmd.Flags().GetString("input-file"); inputFile != "" {
		fmt.Fprintf(out, "reading URLs from %s\n", inputFile)
		urls, err := readURLFile(inputFile)
		if err != nil {
			return err
		}
		seeds = append(seeds, urls...)
	}
	seeds = append(seeds, args...)
	if len(seeds) == 0 {
		fmt.Fprintln(out, "warning: no starting URLs provided")
		return cmd.Help()
	}

	client := &http.Client{}
	resolver, err := httputil.NewResolver(client, cfg.Crawl.HTTPConfig, cfg.Crawl.ResolveCacheSize)
	if err != nil {
		return fmt.Errorf("creating resolver: %w", err)
	}

	runID := uuid.NewString()
	opts := crawl.Options{
		Resolver:     resolver,
		Fetcher:      httputil.NewClient(client, cfg.Crawl.HTTPConfig),
		Saver:        acquire.NewSaver(cfg.Crawl, runID),
		Events:       newReporter(out),
		Logger:       logger.With("run_id", runID),
		MaxPageBytes: cfg.Crawl.MaxPageBytes,
	}
	if cfg.Catalog.Enabled() {
		store, err := catalog.Open(cfg.Catalog)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Recorder = store
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		// A second signal terminates the process.
		stop()
	}()

	summary, err := crawl.New(opts).Run(ctx, seeds)
	printSummary(out, summary)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "All processing complete.")
	return nil
}
