package mirror

import "errors"

var (
	// ErrDumpNotReady is returned when the mirror reports the articles job
	// as anything other than done. Partial dumps would yield truncated output.
	ErrDumpNotReady = errors.New("mirror: dump is not finished yet")

	// ErrNoArticlesJob is returned when the manifest carries no articles job.
	ErrNoArticlesJob = errors.New("mirror: manifest has no articles dump job")

	// ErrNoFiles is returned when the articles job lists no dump files.
	ErrNoFiles = errors.New("mirror: articles dump job lists no files")

	// ErrStatusNotOK is returned when the mirror answers with a non-200 status.
	ErrStatusNotOK = errors.New("mirror: unexpected HTTP status")
)
