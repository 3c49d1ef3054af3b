package source

import (
	"context"
	"crypto/md5" //nolint:gosec // dump mirrors advertise md5 digests
	"crypto/sha1" //nolint:gosec // dump mirrors advertise sha1 digests
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Caellian/wiki-extractor/internal/mirror"
)

var (
	// ErrRetriesExhausted is returned when a remote stream failed more times
	// than the configured attempt budget allows.
	ErrRetriesExhausted = errors.New("source: retry attempts exhausted")

	// ErrStatusNotOK is returned when the server rejects a download request.
	ErrStatusNotOK = errors.New("source: unexpected HTTP status")
)

// ChecksumError reports a digest mismatch between the delivered stream and
// the value the mirror advertised. It is diagnostic, not fatal; extracted
// output from a mismatched stream is still written, just flagged.
type ChecksumError struct {
	Algorithm string
	Want      string
	Got       string
}

// Error returns the error message.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("source: %s mismatch: want %s, got %s", e.Algorithm, e.Want, e.Got)
}

const (
	defaultRetryLimit  = 5
	defaultReadTimeout = 30 * time.Second
	backoffBase        = 500 * time.Millisecond
	backoffCap         = 10 * time.Second
)

// Source is a dump file byte stream. It implements io.ReadCloser.
// Not safe for concurrent use.
type Source struct {
	ctx         context.Context
	entry       mirror.FileEntry
	client      *http.Client
	userAgent   string
	retryLimit  int
	readTimeout time.Duration

	body     io.ReadCloser
	offset   int64
	attempts int
	md5sum   hash.Hash
	sha1sum  hash.Hash
	done     bool
}

// Option sets an option on a Source.
type Option func(*Source)

// WithHTTPClient sets the HTTP client used for remote streams.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithUserAgent sets the User-Agent header sent on download requests.
func WithUserAgent(ua string) Option {
	return func(s *Source) {
		s.userAgent = ua
	}
}

// WithRetryLimit sets the total connection attempt budget for the stream.
func WithRetryLimit(n int) Option {
	return func(s *Source) {
		s.retryLimit = n
	}
}

// WithReadTimeout sets the stall watchdog. A single Read that delivers no
// bytes within this window is treated as a dropped connection.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Source) {
		s.readTimeout = d
	}
}

// Open opens the dump file described by entry. Remote entries are connected
// immediately so that unreachable mirrors fail fast; local entries are opened
// from the filesystem.
func Open(ctx context.Context, entry mirror.FileEntry, opts ...Option) (*Source, error) {
	s := &Source{
		ctx:         ctx,
		entry:       entry,
		client:      http.DefaultClient,
		retryLimit:  defaultRetryLimit,
		readTimeout: defaultReadTimeout,
		md5sum:      md5.New(), //nolint:gosec // integrity check, not authentication
		sha1sum:     sha1.New(), //nolint:gosec // integrity check, not authentication
	}
	for _, opt := range opts {
		opt(s)
	}

	if !entry.Remote() {
		f, err := os.Open(entry.Path)
		if err != nil {
			return nil, fmt.Errorf("open local dump: %w", err)
		}
		s.body = f
		return s, nil
	}

	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// connect opens (or reopens) the remote stream from the current offset.
func (s *Source) connect() error {
	s.attempts++
	if s.attempts > s.retryLimit {
		return fmt.Errorf("%w: %d attempts for %s", ErrRetriesExhausted, s.attempts-1, s.entry.Name)
	}

	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.entry.URL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if s.offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", s.offset))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("connect to mirror: %w", err)
	}

	switch {
	case s.offset == 0 && resp.StatusCode == http.StatusOK:
	case s.offset > 0 && resp.StatusCode == http.StatusPartialContent:
	case s.offset > 0 && resp.StatusCode == http.StatusOK:
		// Server ignored the Range header. Restarting from zero would corrupt
		// the hashes and re-deliver consumed bytes, so skip forward instead.
		if _, err := io.CopyN(io.Discard, resp.Body, s.offset); err != nil {
			_ = resp.Body.Close()
			return fmt.Errorf("skip to resume offset: %w", err)
		}
	default:
		_ = resp.Body.Close()
		return fmt.Errorf("%w: %s from %s", ErrStatusNotOK, resp.Status, s.entry.URL)
	}

	if s.body != nil {
		_ = s.body.Close()
	}
	s.body = resp.Body
	return nil
}

// Read reads from the stream, reconnecting on transient remote failures.
func (s *Source) Read(p []byte) (int, error) {
	for {
		// Stall watchdog. Closing the body is the only way to interrupt a
		// blocked Read on a net/http response stream.
		var timer *time.Timer
		if s.entry.Remote() && s.readTimeout > 0 {
			body := s.body
			timer = time.AfterFunc(s.readTimeout, func() {
				_ = body.Close()
			})
		}

		n, err := s.body.Read(p)
		if timer != nil {
			timer.Stop()
		}

		if n > 0 {
			s.offset += int64(n)
			_, _ = s.md5sum.Write(p[:n])
			_, _ = s.sha1sum.Write(p[:n])
		}

		switch {
		case err == nil:
			return n, nil
		case errors.Is(err, io.EOF):
			s.done = true
			return n, io.EOF
		case !s.entry.Remote():
			return n, fmt.Errorf("read local dump: %w", err)
		case s.ctx.Err() != nil:
			return n, s.ctx.Err()
		}

		// Dropped or stalled connection. Back off and resume from offset.
		if waitErr := s.backoff(); waitErr != nil {
			return n, waitErr
		}
		if connErr := s.connect(); connErr != nil {
			return n, connErr
		}
		if n > 0 {
			return n, nil
		}
	}
}

// backoff sleeps for an exponentially growing interval between attempts.
func (s *Source) backoff() error {
	delay := backoffBase << (s.attempts - 1)
	if delay > backoffCap || delay <= 0 {
		delay = backoffCap
	}
	select {
	case <-time.After(delay):
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// Verify compares the hashed stream against the checksums advertised for the
// entry. It returns nil when no checksums were advertised. Only meaningful
// after the stream has been fully consumed.
func (s *Source) Verify() error {
	if s.entry.MD5 != "" {
		if got := hex.EncodeToString(s.md5sum.Sum(nil)); got != s.entry.MD5 {
			return &ChecksumError{Algorithm: "md5", Want: s.entry.MD5, Got: got}
		}
	}
	if s.entry.SHA1 != "" {
		if got := hex.EncodeToString(s.sha1sum.Sum(nil)); got != s.entry.SHA1 {
			return &ChecksumError{Algorithm: "sha1", Want: s.entry.SHA1, Got: got}
		}
	}
	return nil
}

// BytesRead returns how many bytes the stream has delivered so far.
func (s *Source) BytesRead() int64 {
	return s.offset
}

// Close releases the underlying stream.
func (s *Source) Close() error {
	if s.body == nil {
		return nil
	}
	if err := s.body.Close(); err != nil && !s.done {
		return fmt.Errorf("close dump stream: %w", err)
	}
	return nil
}
