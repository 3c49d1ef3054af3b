package sink

import (
	"bufio"
	"fmt"
	"os"
)

// Artifact file names, relative to the output directory.
const (
	TextFileName         = "wiki_sentences.txt"
	TextFileMarkdownName = "wiki_sentences.md"
	DictionaryFileName   = "dictionary.txt"
	RedirectsFileName    = "redirects.json"
	MetadataFileName     = "wiki_page_info.json"
)

// TextSink writes extracted text units. In plain mode each unit is one line;
// in markdown mode units are separated by blank lines so block structure
// renders.
type TextSink struct {
	f        *os.File
	w        *bufio.Writer
	markdown bool
	units    int64
}

// NewTextSink creates the text dump file, truncating any previous one.
func NewTextSink(path string, markdown bool) (*TextSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create text dump: %w", err)
	}
	return &TextSink{f: f, w: bufio.NewWriter(f), markdown: markdown}, nil
}

// WriteUnits appends a page's units to the dump.
func (s *TextSink) WriteUnits(units []string) error {
	for _, unit := range units {
		if _, err := s.w.WriteString(unit); err != nil {
			return fmt.Errorf("write text unit: %w", err)
		}
		if s.markdown {
			if _, err := s.w.WriteString("\n\n"); err != nil {
				return fmt.Errorf("write text unit: %w", err)
			}
		} else {
			if err := s.w.WriteByte('\n'); err != nil {
				return fmt.Errorf("write text unit: %w", err)
			}
		}
		s.units++
	}
	return nil
}

// Units returns how many units have been written.
func (s *TextSink) Units() int64 {
	return s.units
}

// Close flushes and closes the dump file.
func (s *TextSink) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("flush text dump: %w", err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("close text dump: %w", err)
	}
	return nil
}
