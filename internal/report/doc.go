// Package report renders end-of-run extraction summaries.
//
// A summary covers what was processed, what was skipped or degraded, and
// which artifact files the run produced. Markdown output is for humans and
// documentation; JSON output is for tooling.
package report
