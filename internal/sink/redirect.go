package sink

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Caellian/wiki-extractor/internal/model"
)

// RedirectSink writes the redirect index as a single JSON object mapping
// source titles to target titles. Entries are flushed as they arrive: a run
// killed halfway leaves a file that only needs a closing brace to be valid,
// and every entry it contains is trustworthy.
type RedirectSink struct {
	f     *os.File
	count int64
}

// NewRedirectSink creates the redirect index file.
func NewRedirectSink(path string) (*RedirectSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create redirect index: %w", err)
	}
	if _, err := f.WriteString("{"); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write redirect index: %w", err)
	}
	return &RedirectSink{f: f}, nil
}

// Add appends one redirect edge. Duplicate sources are written as-is; JSON
// consumers resolve duplicates last-wins, which matches archive order.
func (s *RedirectSink) Add(edge model.RedirectEdge) error {
	src, err := json.Marshal(edge.Source)
	if err != nil {
		return fmt.Errorf("encode redirect source: %w", err)
	}
	dst, err := json.Marshal(edge.Target)
	if err != nil {
		return fmt.Errorf("encode redirect target: %w", err)
	}

	sep := ""
	if s.count > 0 {
		sep = ","
	}
	if _, err := fmt.Fprintf(s.f, "%s\n  %s: %s", sep, src, dst); err != nil {
		return fmt.Errorf("write redirect entry: %w", err)
	}
	s.count++
	return nil
}

// Count returns how many edges have been written.
func (s *RedirectSink) Count() int64 {
	return s.count
}

// Close terminates the JSON object and closes the file.
func (s *RedirectSink) Close() error {
	var tail string
	if s.count > 0 {
		tail = "\n}\n"
	} else {
		tail = "}\n"
	}
	if _, err := s.f.WriteString(tail); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("finish redirect index: %w", err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("close redirect index: %w", err)
	}
	return nil
}
