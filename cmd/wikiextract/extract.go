package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Caellian/wiki-extractor/internal/config"
	"github.com/Caellian/wiki-extractor/internal/database"
	"github.com/Caellian/wiki-extractor/internal/extract"
	"github.com/Caellian/wiki-extractor/internal/log"
	"github.com/Caellian/wiki-extractor/internal/mirror"
	"github.com/Caellian/wiki-extractor/internal/model"
	"github.com/Caellian/wiki-extractor/internal/pipeline"
	"github.com/Caellian/wiki-extractor/internal/report"
	"github.com/Caellian/wiki-extractor/internal/sink"
	"github.com/spf13/cobra"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [source]",
		Short: "Extract text corpora from a Wikipedia dump",
		Long: `Extract streams a Wikipedia pages-articles dump and derives text corpora
from it. The dump is decompressed and segmented incrementally, so memory
use stays flat regardless of archive size.

The source is a dump mirror URL or a local path to an already-downloaded
archive (file or directory of split files). Without a source the canonical
Wikimedia mirror is used.

Examples:
  # Extract the latest Croatian Wikipedia from the canonical mirror
  wikiextract extract --language hr

  # Extract a pinned dump date
  wikiextract extract --language hr --dump-version 20260801

  # Extract from an already-downloaded archive
  wikiextract extract ./hrwiki-20260801-pages-articles.xml.bz2

  # Only build the dictionary, with four parse workers
  wikiextract extract --language hr --text=false --redirects=false \
    --metadata=false --parse-workers 4

  # Markdown text dump with a JSON run report
  wikiextract extract --language hr --markdown --report run.json

Configuration file (.wikiextract) example:
  defaults:
    mirror: "https://mirror.example.org/dumps/"
  languages:
    hr:
      dumpVersion: "20260801"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExtractCmd,
	}

	// Source selection flags
	cmd.Flags().StringP("language", "L", config.DefaultLanguage,
		"Wikipedia language code (subdomain part, e.g. hr, de, en)")
	cmd.Flags().String("dump-version", config.DefaultDumpVersion,
		"Dump date directory (YYYYMMDD) or \"latest\"")

	// Generator flags
	cmd.Flags().Bool("text", true, "Write the text dump")
	cmd.Flags().Bool("dictionary", true, "Write the word-frequency dictionary")
	cmd.Flags().Bool("redirects", true, "Write the redirect index")
	cmd.Flags().Bool("metadata", true, "Write the page metadata listing")

	// Text rendering flags
	cmd.Flags().BoolP("markdown", "m", false,
		"Render document structure as Markdown instead of plain prose")
	cmd.Flags().Bool("headings", false, "Keep section headings in the text dump")
	cmd.Flags().Bool("only-sentences", true,
		"Drop list items and table cells without sentence punctuation")
	cmd.Flags().Bool("tables", true, "Keep table cell content")
	cmd.Flags().Bool("preformatted", false, "Keep preformatted blocks")

	// Stream tuning flags
	cmd.Flags().Int("chunk-size", config.DefaultChunkSize,
		"Decompressed chunk size in bytes")
	cmd.Flags().Int("queue-depth", config.DefaultQueueDepth,
		"Inter-stage queue capacity in pages")
	cmd.Flags().IntP("parse-workers", "w", config.DefaultParseWorkers,
		"Number of concurrent markup parsers")
	cmd.Flags().Int("retries", config.DefaultRetryLimit,
		"Attempts per remote read position before failing")
	cmd.Flags().DurationP("timeout", "t", config.DefaultReadTimeout,
		"Timeout for a single network read")
	cmd.Flags().Int64("max-page-bytes", config.DefaultMaxPageBytes,
		"Size cap for one buffered page")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Output directory for the derived corpora")
	cmd.Flags().String("report", "",
		"Write the run summary to this file (.md or .json, by extension)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory for the archive index database")
	cmd.Flags().Bool("no-db", false, "Disable the archive index database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikiextract in current or home directory)")

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging. The diagnostic handler counts non-fatal
	// error classes for the end-of-run summary.
	logger, diag := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runExtract(ctx, cfg, logger, diag)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.Source = config.DefaultMirror
	sourceArg := len(args) > 0
	if sourceArg {
		cfg.Source = args[0]
	}

	cfg.Language, err = cmd.Flags().GetString("language")
	if err != nil {
		return nil, err
	}
	cfg.DumpVersion, err = cmd.Flags().GetString("dump-version")
	if err != nil {
		return nil, err
	}
	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.CollectText, err = cmd.Flags().GetBool("text")
	if err != nil {
		return nil, err
	}
	cfg.BuildDictionary, err = cmd.Flags().GetBool("dictionary")
	if err != nil {
		return nil, err
	}
	cfg.CollectRedirect, err = cmd.Flags().GetBool("redirects")
	if err != nil {
		return nil, err
	}
	cfg.CollectMetadata, err = cmd.Flags().GetBool("metadata")
	if err != nil {
		return nil, err
	}

	cfg.Text.Markdown, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.Text.IncludeHeadings, err = cmd.Flags().GetBool("headings")
	if err != nil {
		return nil, err
	}
	cfg.Text.OnlySentences, err = cmd.Flags().GetBool("only-sentences")
	if err != nil {
		return nil, err
	}
	cfg.Text.IncludeTables, err = cmd.Flags().GetBool("tables")
	if err != nil {
		return nil, err
	}
	cfg.Text.IncludePreformatted, err = cmd.Flags().GetBool("preformatted")
	if err != nil {
		return nil, err
	}

	// Markdown output is about keeping structure, so it flips the prose
	// filters unless the user set them explicitly.
	if cfg.Text.Markdown {
		if !cmd.Flags().Changed("headings") {
			cfg.Text.IncludeHeadings = true
		}
		if !cmd.Flags().Changed("only-sentences") {
			cfg.Text.OnlySentences = false
		}
	}

	cfg.ChunkSize, err = cmd.Flags().GetInt("chunk-size")
	if err != nil {
		return nil, err
	}
	cfg.QueueDepth, err = cmd.Flags().GetInt("queue-depth")
	if err != nil {
		return nil, err
	}
	cfg.ParseWorkers, err = cmd.Flags().GetInt("parse-workers")
	if err != nil {
		return nil, err
	}
	cfg.RetryLimit, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}
	cfg.ReadTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.MaxPageBytes, err = cmd.Flags().GetInt64("max-page-bytes")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if noDB {
		cfg.DBDir = ""
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-language overrides from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.File, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.File = &config.File{
			Languages: make(map[string]config.LanguageConfig),
		}
	}

	// Flags and positional arguments beat the config file.
	lc := cfg.File.GetLanguageConfig(cfg.Language)
	if lc.Mirror != "" && !sourceArg {
		cfg.Source = lc.Mirror
	}
	if lc.DumpVersion != "" && !cmd.Flags().Changed("dump-version") {
		cfg.DumpVersion = lc.DumpVersion
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The returned diagnostic handler tallies warning kinds for the summary.
func setupLogger(verbose bool) (*slog.Logger, *log.DiagnosticHandler) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := log.NewDiagnosticHandler(slog.NewTextHandler(os.Stderr, opts))
	return slog.New(handler), handler
}

// remoteSource reports whether the source is a dump mirror URL rather than
// a local path.
func remoteSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// resolveDump turns the configured source into an ordered list of dump files.
func resolveDump(ctx context.Context, cfg *config.Config, client *http.Client) (*mirror.Dump, error) {
	if !remoteSource(cfg.Source) {
		return mirror.LocalDump(cfg.Source)
	}

	resolver := mirror.NewResolver(cfg.Source,
		mirror.WithHTTPClient(client),
		mirror.WithUserAgent(config.DefaultUserAgent),
	)
	dump, err := resolver.Resolve(ctx, cfg.Language, cfg.DumpVersion)
	if err != nil {
		return nil, fmt.Errorf("resolve dump %s/%s: %w", cfg.Language, cfg.DumpVersion, err)
	}
	return dump, nil
}

// buildSinks creates the enabled sinks in the output directory and returns
// the multiplexer together with the artifact paths it will produce.
func buildSinks(cfg *config.Config) (*sink.Multiplexer, []string, error) {
	mux := &sink.Multiplexer{}
	var artifacts []string

	if cfg.CollectText {
		name := sink.TextFileName
		if cfg.Text.Markdown {
			name = sink.TextFileMarkdownName
		}
		path := filepath.Join(cfg.OutputDir, name)
		text, err := sink.NewTextSink(path, cfg.Text.Markdown)
		if err != nil {
			return nil, nil, err
		}
		mux.Text = text
		artifacts = append(artifacts, path)
	}

	if cfg.BuildDictionary {
		path := filepath.Join(cfg.OutputDir, sink.DictionaryFileName)
		mux.Dictionary = extract.NewDictionary()
		mux.DictFile = sink.NewDictionarySink(path, mux.Dictionary)
		artifacts = append(artifacts, path)
	}

	if cfg.CollectRedirect {
		path := filepath.Join(cfg.OutputDir, sink.RedirectsFileName)
		redirects, err := sink.NewRedirectSink(path)
		if err != nil {
			return nil, nil, err
		}
		mux.Redirects = redirects
		artifacts = append(artifacts, path)
	}

	if cfg.CollectMetadata {
		path := filepath.Join(cfg.OutputDir, sink.MetadataFileName)
		metadata, err := sink.NewMetadataSink(path)
		if err != nil {
			return nil, nil, err
		}
		mux.Metadata = metadata
		artifacts = append(artifacts, path)
	}

	return mux, artifacts, nil
}

// runExtract executes the extraction.
func runExtract(ctx context.Context, cfg *config.Config, logger *slog.Logger, diag *log.DiagnosticHandler) error {
	logger.Info("starting extraction",
		"source", cfg.Source,
		"language", cfg.Language,
		"dumpVersion", cfg.DumpVersion,
		"output", cfg.OutputDir,
		"parseWorkers", cfg.ParseWorkers,
	)

	// Remote reads are bounded per attempt inside the source stage, so the
	// shared client carries no overall timeout. A dump download legitimately
	// runs for hours.
	client := &http.Client{}

	dump, err := resolveDump(ctx, cfg, client)
	if err != nil {
		return err
	}
	logger.Info("dump resolved", "files", len(dump.Files))

	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	mux, artifacts, err := buildSinks(cfg)
	if err != nil {
		return fmt.Errorf("failed to create output files: %w", err)
	}

	// Open the archive index database unless disabled.
	var db *database.ArchiveDB
	var runID int64
	if cfg.DBDir != "" {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck // Best effort cleanup
		runID, err = db.BeginRun(ctx, cfg.Source, cfg.Language, cfg.DumpVersion)
		if err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		logger.Info("database opened", "path", db.Path(), "run", runID)
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithHTTPClient(client),
	}
	if db != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithArchiveDB(db, runID))
	}

	fmt.Printf("Extracting %s...\n", cfg.Source)

	p := pipeline.New(cfg, mux, pipelineOpts...)
	snap, runErr := p.Run(ctx, dump)

	// Sinks close regardless of the run outcome so partial output survives
	// cancellation and failure.
	if err := mux.Close(); err != nil {
		logger.Error("failed to close output files", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	if db != nil {
		// The run record must be finalized even when the run context was
		// cancelled.
		finishCtx := context.WithoutCancel(ctx)
		if err := db.FinishRun(finishCtx, runID, string(snap.Outcome), database.RunStats{
			PagesWritten: snap.PagesWritten,
			PagesSkipped: snap.PagesSkipped,
			Redirects:    snap.Redirects,
		}); err != nil {
			logger.Error("failed to finalize run record", "error", err)
		}
	}

	summary := buildSummary(cfg, snap, mux, diag, artifacts)
	if err := outputSummary(cfg, &summary); err != nil {
		logger.Error("failed to write summary", "error", err)
	}

	return runErr
}

// buildSummary assembles the end-of-run summary from the run snapshot and
// the sink counters.
func buildSummary(cfg *config.Config, snap model.Snapshot, mux *sink.Multiplexer, diag *log.DiagnosticHandler, artifacts []string) report.Summary {
	summary := report.FromState(snap)
	summary.Source = cfg.Source
	summary.OutputDir = cfg.OutputDir
	if remoteSource(cfg.Source) {
		summary.Language = cfg.Language
		summary.DumpVersion = cfg.DumpVersion
	}
	if mux.Text != nil {
		summary.TextUnits = mux.Text.Units()
	}
	if mux.Dictionary != nil {
		summary.DistinctTokens = mux.Dictionary.Distinct()
		summary.TotalTokens = mux.Dictionary.Total()
	}
	summary.Diagnostics = diag.Counts()
	summary.Artifacts = artifacts
	return summary
}

// outputSummary writes the summary to stdout and, when configured, to the
// report file. The file format follows the extension: .json for JSON,
// Markdown otherwise.
func outputSummary(cfg *config.Config, summary *report.Summary) error {
	writer := report.NewMarkdownWriter(os.Stdout)
	if _, err := writer.Write(summary); err != nil {
		return err
	}

	if cfg.ReportFile == "" {
		return nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Best effort cleanup

	var fileWriter report.Writer
	if strings.EqualFold(filepath.Ext(cfg.ReportFile), ".json") {
		fileWriter = report.NewJSONWriter(f, report.WithIndent("", "  "))
	} else {
		fileWriter = report.NewMarkdownWriter(f)
	}
	_, err = fileWriter.Write(summary)
	return err
}
