// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfdl/internal/catalog"
	"github.com/pdiddy/pdfdl/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List documents recorded in the catalog",
	Long: `History lists the PDFs saved by earlier runs, newest first. It needs a
catalog configured with --catalog-driver and --catalog-dsn (or the
catalog section of the config file).`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 50, "maximum number of documents to list")
	historyCmd.Flags().Bool("json", false, "output documents as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	if err := applySecrets(&cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}
	if !cfg.Catalog.Enabled() {
		return fmt.Errorf("no catalog configured: set --catalog-driver and --catalog-dsn")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return printHistory(cmd.OutOrStdout(), docs, asJSON)
}

func printHistory(w io.Writer, docs []types.Document, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if docs == nil {
			docs = []types.Document{}
		}
		return enc.Encode(docs)
	}
	if len(docs) == 0 {
		fmt.Fprintln(w, "no documents recorded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SAVED\tBYTES\tPATH\tURL")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", d.SavedAt.Local().Format(time.DateTime), d.Bytes, d.Path, d.FinalURL)
	}
	return tw.Flush()
}
