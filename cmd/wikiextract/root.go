package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wikiextract.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikiextract",
		Short: "Derive text corpora from Wikipedia XML dumps",
		Long: `wikiextract streams block-compressed Wikipedia XML dumps and derives
plain-text corpora from them without ever holding a whole dump in memory.

It can download dumps from a mirror or read already-downloaded archives,
and produces any combination of: a text dump, a word-frequency dictionary,
a redirect index, and a page metadata listing.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
