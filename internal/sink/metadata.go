package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Caellian/wiki-extractor/internal/model"
)

// MetadataSink writes page metadata as a JSON array, one record per page in
// archive order.
type MetadataSink struct {
	f     *os.File
	w     *bufio.Writer
	count int64
}

// NewMetadataSink creates the metadata file.
func NewMetadataSink(path string) (*MetadataSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create metadata file: %w", err)
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString("["); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write metadata file: %w", err)
	}
	return &MetadataSink{f: f, w: w}, nil
}

// Write appends one metadata record.
func (s *MetadataSink) Write(meta model.PageMeta) error {
	encoded, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode page metadata: %w", err)
	}

	sep := ""
	if s.count > 0 {
		sep = ","
	}
	if _, err := fmt.Fprintf(s.w, "%s\n  %s", sep, encoded); err != nil {
		return fmt.Errorf("write metadata record: %w", err)
	}
	s.count++
	return nil
}

// Count returns how many records have been written.
func (s *MetadataSink) Count() int64 {
	return s.count
}

// Close terminates the JSON array and closes the file.
func (s *MetadataSink) Close() error {
	tail := "]\n"
	if s.count > 0 {
		tail = "\n]\n"
	}
	if _, err := s.w.WriteString(tail); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("finish metadata file: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("flush metadata file: %w", err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("close metadata file: %w", err)
	}
	return nil
}
