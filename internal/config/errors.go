package config

import "errors"

// Configuration validation errors.
//
// Design decision: package-level sentinel errors rather than ad-hoc
// fmt.Errorf values so callers can use errors.Is while the messages stay
// human-readable on the CLI.
var (
	// ErrNoSource is returned when neither a mirror URL nor a local path
	// was provided.
	ErrNoSource = errors.New("no dump source: provide a mirror URL or a local archive path")

	// ErrNoGenerator is returned when every output artifact is disabled.
	// Running the pipeline with nothing to produce is always a mistake.
	ErrNoGenerator = errors.New("nothing to generate: enable at least one of --text, --dictionary, --redirects, --metadata")

	// ErrInvalidChunkSize is returned for a non-positive chunk size.
	ErrInvalidChunkSize = errors.New("invalid chunk size: must be positive")

	// ErrInvalidQueueDepth is returned for a non-positive queue depth.
	// Depth zero would deadlock the hand-off between stages.
	ErrInvalidQueueDepth = errors.New("invalid queue depth: must be positive")

	// ErrInvalidParseWorkers is returned for a non-positive worker count.
	ErrInvalidParseWorkers = errors.New("invalid parse workers: must be positive")

	// ErrInvalidRetryLimit is returned for a non-positive retry limit.
	ErrInvalidRetryLimit = errors.New("invalid retry limit: must be positive")

	// ErrInvalidTimeout is returned for a non-positive read timeout.
	ErrInvalidTimeout = errors.New("invalid read timeout: must be positive")

	// ErrInvalidPageCap is returned for a non-positive page size cap.
	ErrInvalidPageCap = errors.New("invalid page size cap: must be positive")

	// ErrInvalidLanguage is returned when the language code is not a
	// recognizable language tag.
	ErrInvalidLanguage = errors.New("invalid language: not a recognizable language code")
)
