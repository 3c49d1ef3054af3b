package report

import (
	"io"
	"time"

	"github.com/Caellian/wiki-extractor/internal/model"
)

// Summary is the end-of-run extraction summary handed to report writers.
type Summary struct {
	// Source identifies the dump: a mirror URL or a local path.
	Source      string `json:"source"`
	Language    string `json:"language,omitempty"`
	DumpVersion string `json:"dump_version,omitempty"`
	OutputDir   string `json:"output_dir"`

	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Elapsed  time.Duration `json:"elapsed_ns"`

	Outcome     model.Outcome `json:"outcome"`
	FailedStage model.Stage   `json:"failed_stage,omitempty"`
	Unverified  bool          `json:"unverified,omitempty"`

	PagesEmitted  int64 `json:"pages_emitted"`
	PagesWritten  int64 `json:"pages_written"`
	PagesSkipped  int64 `json:"pages_skipped"`
	PagesDegraded int64 `json:"pages_degraded"`
	Redirects     int64 `json:"redirects"`
	BytesRead     int64 `json:"bytes_read"`
	BytesDecoded  int64 `json:"bytes_decoded"`

	TextUnits      int64 `json:"text_units,omitempty"`
	DistinctTokens int   `json:"distinct_tokens,omitempty"`
	TotalTokens    int64 `json:"total_tokens,omitempty"`

	// Diagnostics tallies non-fatal error classes by kind.
	Diagnostics map[string]int `json:"diagnostics,omitempty"`

	// Artifacts lists the output files the run produced.
	Artifacts []string `json:"artifacts,omitempty"`
}

// FromState builds the counter portion of a Summary from a run snapshot.
func FromState(snap model.Snapshot) Summary {
	return Summary{
		Started:       snap.Started,
		Finished:      snap.Finished,
		Elapsed:       snap.Finished.Sub(snap.Started),
		Outcome:       snap.Outcome,
		FailedStage:   snap.FailedStage,
		Unverified:    snap.Unverified,
		PagesEmitted:  snap.PagesEmitted,
		PagesWritten:  snap.PagesWritten,
		PagesSkipped:  snap.PagesSkipped,
		PagesDegraded: snap.PagesDegraded,
		Redirects:     snap.Redirects,
		BytesRead:     snap.BytesRead,
		BytesDecoded:  snap.BytesDecoded,
	}
}

// Writer defines the interface for summary output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(summary *Summary) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Returns the total bytes written. Stops on the first error encountered.
func (m *MultiWriter) Write(summary *Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
