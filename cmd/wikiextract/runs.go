package main

import (
	"fmt"

	"github.com/Caellian/wiki-extractor/internal/config"
	"github.com/Caellian/wiki-extractor/internal/database"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewRunsCmd creates the runs command.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded extraction runs",
		Long: `Runs lists extraction runs recorded in the archive index database,
newest first, with their outcome and page counters.

Examples:
  # Show the ten most recent runs
  wikiextract runs

  # Show more history
  wikiextract runs -n 50`,
		RunE: runRunsCmd,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to show")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory for the archive index database")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no archive index found in %s: %w", dbDir, err)
	}
	defer db.Close() //nolint:errcheck // read-only access

	runs, err := db.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, r := range runs {
		label := r.Source
		if r.Language != "" {
			label = fmt.Sprintf("%s/%s", r.Language, r.DumpVersion)
		}
		fmt.Fprintf(out, "#%d  %-24s %-10s pages=%s skipped=%s redirects=%s\n",
			r.ID, label, r.Outcome,
			humanize.Comma(r.Stats.PagesWritten),
			humanize.Comma(r.Stats.PagesSkipped),
			humanize.Comma(r.Stats.Redirects))
	}
	return nil
}
