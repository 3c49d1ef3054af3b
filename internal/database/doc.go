// Package database provides SQLite-based storage for extraction runs.
//
// The archive index is optional; when enabled it records each run and the
// metadata of every processed page, so past extractions can be queried
// without re-reading multi-gigabyte dumps.
package database
