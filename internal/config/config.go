package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"
)

// Default configuration values.
// Sizes follow the memory-boundedness contract: peak memory must stay within
// a small multiple of one page plus the configured queue depth, independent
// of archive size.
const (
	// DefaultMirror is the Wikimedia canonical dump mirror. Community
	// mirrors serve the same directory layout and can be substituted via
	// the config file or a full URL argument.
	DefaultMirror = "https://dumps.wikimedia.org/"

	// DefaultLanguage selects the English Wikipedia. The language code is
	// the subdomain part, not a BCP 47 tag, but every dump language code
	// is also parseable as one, which Validate relies on to reject typos.
	DefaultLanguage = "en"

	// DefaultDumpVersion selects the newest published dump. Any concrete
	// dump date in YYYYMMDD form can be used instead.
	DefaultDumpVersion = "latest"

	// DefaultOutputDir is where the derived corpora are written.
	DefaultOutputDir = "./dump"

	// DefaultChunkSize bounds a single decompressed chunk. A few hundred
	// KiB keeps memory proportional to the bzip2 block size while staying
	// large enough to amortize scanning overhead.
	DefaultChunkSize = 256 * 1024

	// DefaultQueueDepth is the capacity of the page hand-off queues
	// between pipeline stages. This, not buffering inside stages, is the
	// backpressure mechanism: when a queue is full the producer suspends.
	DefaultQueueDepth = 4

	// DefaultParseWorkers is the number of concurrent markup parsers.
	// 1 means strictly sequential parsing. Higher values parallelize
	// parsing while output order is still restored before writing.
	DefaultParseWorkers = 1

	// DefaultRetryLimit is the number of attempts for one remote read
	// position before the failure becomes fatal.
	DefaultRetryLimit = 5

	// DefaultReadTimeout bounds a single network read. Dump mirrors
	// throttle heavily; a stalled connection is indistinguishable from a
	// dead one only after this long.
	DefaultReadTimeout = 30 * time.Second

	// DefaultMaxPageBytes caps the byte size of a single page buffer.
	// The largest pages in practice are tens of MiB of wikitext; a page
	// that exceeds the cap without closing is treated as a segmentation
	// error and skipped.
	DefaultMaxPageBytes = 64 * 1024 * 1024

	// DefaultUserAgent identifies the extractor to dump mirrors, per the
	// Wikimedia User-Agent policy.
	DefaultUserAgent = "wiki-extractor/2.0 (+https://github.com/Caellian/wiki-extractor)"

	// AppName is used for XDG directory paths.
	AppName = "wikiextract"
)

// TextOptions controls how surviving document structure is rendered into
// the text dump.
type TextOptions struct {
	// Markdown re-renders structure (headings, lists, emphasis, tables)
	// as Markdown. When false the dump is plain prose.
	Markdown bool

	// IncludeHeadings keeps section headings in the text dump. The
	// dictionary counts words from rendered units, so heading words are
	// only tallied when this is set.
	IncludeHeadings bool

	// IncludePreformatted keeps preformatted blocks.
	IncludePreformatted bool

	// IncludeTables keeps table cell content.
	IncludeTables bool

	// OnlySentences drops list items and table cells that do not end in
	// sentence punctuation. Not every edge case is handled; the filter
	// trades recall for a cleaner corpus.
	OnlySentences bool
}

// Config holds all settings for one extraction run.
//
// Design decision: one flat struct built from flags and handed down by
// injection, mirroring how the rest of the codebase avoids ambient state.
// The pipeline stages each receive only the fields they need.
type Config struct {
	// Source is the dump location: an HTTP(S) mirror URL or a local file
	// path to an already-downloaded archive.
	Source string

	// Language is the Wikipedia language code used to resolve the dump
	// directory on a mirror. Ignored for local sources.
	Language string

	// DumpVersion is the dump date directory, or "latest".
	DumpVersion string

	// OutputDir receives the output artifacts.
	OutputDir string

	// Generator toggles. At least one must be enabled.
	CollectText     bool
	BuildDictionary bool
	CollectRedirect bool
	CollectMetadata bool

	// Text holds the rendering options for the text dump.
	Text TextOptions

	// ChunkSize bounds decompressed chunks in bytes.
	ChunkSize int

	// QueueDepth is the inter-stage hand-off queue capacity in pages.
	QueueDepth int

	// ParseWorkers is the markup parser pool size.
	ParseWorkers int

	// RetryLimit bounds remote retry attempts.
	RetryLimit int

	// ReadTimeout bounds a single network read.
	ReadTimeout time.Duration

	// MaxPageBytes caps one page's buffered size.
	MaxPageBytes int64

	// DBDir enables the SQLite archive index when non-empty.
	DBDir string

	// ReportFile is where the end-of-run summary is written. Format is
	// chosen by extension (.md or .json). Empty disables the report.
	ReportFile string

	// ConfigFilePath is an explicit config file path. Empty means search
	// the standard locations.
	ConfigFilePath string

	// File holds per-language overrides loaded from the config file.
	File *File

	// Verbose enables slog.LevelDebug output.
	Verbose bool
}

// NewConfig returns a Config populated with defaults.
//
// Design decision: a constructor instead of zero values because most
// defaults are non-zero, and the constructor doubles as documentation of
// what they are.
func NewConfig() *Config {
	return &Config{
		Language:     DefaultLanguage,
		DumpVersion:  DefaultDumpVersion,
		OutputDir:    DefaultOutputDir,
		ChunkSize:    DefaultChunkSize,
		QueueDepth:   DefaultQueueDepth,
		ParseWorkers: DefaultParseWorkers,
		RetryLimit:   DefaultRetryLimit,
		ReadTimeout:  DefaultReadTimeout,
		MaxPageBytes: DefaultMaxPageBytes,
		Text: TextOptions{
			IncludeTables: true,
			OnlySentences: true,
		},
	}
}

// AnyGenerator reports whether at least one output artifact is enabled.
func (c *Config) AnyGenerator() bool {
	return c.CollectText || c.BuildDictionary || c.CollectRedirect || c.CollectMetadata
}

// XDGDataDir returns the default directory for the archive index database,
// following the XDG Base Directory Specification.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found as
// a sentinel error. It is called once, after flag parsing, so every stage
// can assume a valid configuration.
func (c *Config) Validate() error {
	if c.Source == "" {
		return ErrNoSource
	}
	if !c.AnyGenerator() {
		return ErrNoGenerator
	}
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.QueueDepth <= 0 {
		return ErrInvalidQueueDepth
	}
	if c.ParseWorkers <= 0 {
		return ErrInvalidParseWorkers
	}
	if c.RetryLimit <= 0 {
		return ErrInvalidRetryLimit
	}
	if c.ReadTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPageBytes <= 0 {
		return ErrInvalidPageCap
	}
	if _, err := language.Parse(c.Language); err != nil {
		return ErrInvalidLanguage
	}
	return nil
}
