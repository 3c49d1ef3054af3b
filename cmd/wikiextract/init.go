package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Caellian/wiki-extractor/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/wikiextract.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new wikiextract configuration file",
		Long: `Initialize creates a new .wikiextract configuration file in the current
directory.

The generated file includes:
- A defaults section for the dump mirror and dump version
- Commented examples for per-language overrides

Examples:
  # Create .wikiextract in current directory
  wikiextract init

  # Create config file at a specific path
  wikiextract init -o myconfig.yaml

  # Force overwrite existing file
  wikiextract init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/wikiextract.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure per-language settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - An alternative dump mirror")
	fmt.Fprintln(cmd.OutOrStdout(), "  - A pinned dump date instead of \"latest\"")

	return nil
}
