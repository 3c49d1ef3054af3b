// Package log provides the structured diagnostic channel for the extraction
// pipeline.
//
// Non-fatal failures (malformed pages, degraded markup parses, checksum
// mismatches) are reported as ordinary slog records carrying a diagnostic
// kind attribute and the page id/title they belong to. DiagnosticHandler
// intercepts those records, tallies them per kind, and forwards them to the
// underlying handler, so failures stay attributable in the log stream while
// the end-of-run report can summarize them without a second bookkeeping path.
package log
