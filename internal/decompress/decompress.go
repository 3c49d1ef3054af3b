package decompress

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// defaultChunkSize bounds how much plaintext a single Next call yields.
const defaultChunkSize = 256 << 10

// bzip2Magic is the stream header of every bzip2 file.
var bzip2Magic = []byte("BZh")

// CorruptError reports undecodable compressed input together with the offset
// into the compressed stream where decoding stopped.
type CorruptError struct {
	Offset int64
	Err    error
}

// Error returns the error message.
func (e *CorruptError) Error() string {
	return fmt.Sprintf("decompress: corrupt input at offset %d: %v", e.Offset, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Reader yields decompressed chunks from a dump stream.
// Not safe for concurrent use.
type Reader struct {
	src        *bufio.Reader
	bz         *bzip2.Reader
	buf        []byte
	compressed bool
	inputBytes int64
	output     int64
}

// Option sets an option on a Reader.
type Option func(*Reader)

// WithChunkSize sets the maximum plaintext bytes a single Next call yields.
func WithChunkSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.buf = make([]byte, n)
		}
	}
}

// NewReader sniffs the format of src and prepares incremental decompression.
func NewReader(src io.Reader, opts ...Option) (*Reader, error) {
	r := &Reader{
		src: bufio.NewReader(src),
		buf: make([]byte, defaultChunkSize),
	}
	for _, opt := range opts {
		opt(r)
	}

	head, err := r.src.Peek(len(bzip2Magic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("sniff dump format: %w", err)
	}
	if string(head) == string(bzip2Magic) {
		bz, err := bzip2.NewReader(r.src, new(bzip2.ReaderConfig))
		if err != nil {
			return nil, fmt.Errorf("open bzip2 stream: %w", err)
		}
		r.bz = bz
		r.compressed = true
	}

	return r, nil
}

// Compressed reports whether the stream was recognized as bzip2.
func (r *Reader) Compressed() bool {
	return r.compressed
}

// Next returns the next chunk of plaintext, or io.EOF when the stream is
// exhausted. The returned slice aliases an internal buffer and is only valid
// until the following Next call.
func (r *Reader) Next() ([]byte, error) {
	if r.compressed {
		return r.nextCompressed()
	}
	return r.nextPlain()
}

func (r *Reader) nextCompressed() ([]byte, error) {
	n, err := io.ReadFull(r.bz, r.buf)
	r.inputBytes = r.bz.InputOffset
	r.output = r.bz.OutputOffset

	switch {
	case err == nil,
		errors.Is(err, io.ErrUnexpectedEOF) && n > 0:
		return r.buf[:n], nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, io.EOF
	default:
		return nil, &CorruptError{Offset: r.bz.InputOffset, Err: err}
	}
}

func (r *Reader) nextPlain() ([]byte, error) {
	n, err := io.ReadFull(r.src, r.buf)
	r.inputBytes += int64(n)
	r.output += int64(n)

	switch {
	case err == nil,
		errors.Is(err, io.ErrUnexpectedEOF) && n > 0:
		return r.buf[:n], nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, io.EOF
	default:
		return nil, fmt.Errorf("read dump stream: %w", err)
	}
}

// InputOffset returns how many source bytes have been consumed.
func (r *Reader) InputOffset() int64 {
	return r.inputBytes
}

// OutputOffset returns how many plaintext bytes have been produced.
func (r *Reader) OutputOffset() int64 {
	return r.output
}
