package sink

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Caellian/wiki-extractor/internal/extract"
)

// DictionarySink writes the word-frequency table. Unlike the streaming sinks
// the dictionary is only complete at the end of a run, so the file is
// written once, on Close.
type DictionarySink struct {
	path string
	dict *extract.Dictionary
}

// NewDictionarySink creates a sink that will write dict's final state to
// path when closed.
func NewDictionarySink(path string, dict *extract.Dictionary) *DictionarySink {
	return &DictionarySink{path: path, dict: dict}
}

// Close sorts the accumulated tokens and writes token<TAB>count lines.
// Ordering is numeric-aware ("2" before "10") with byte order breaking ties,
// so the same dump always produces an identical file.
func (s *DictionarySink) Close() error {
	tokens := make([]string, 0, s.dict.Distinct())
	for tok := range s.dict.Counts() {
		tokens = append(tokens, tok)
	}

	c := collate.New(language.Und, collate.Numeric)
	sort.Slice(tokens, func(i, j int) bool {
		if cmp := c.CompareString(tokens[i], tokens[j]); cmp != 0 {
			return cmp < 0
		}
		return tokens[i] < tokens[j]
	})

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create dictionary file: %w", err)
	}
	w := bufio.NewWriter(f)

	counts := s.dict.Counts()
	for _, tok := range tokens {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", tok, counts[tok]); err != nil {
			_ = f.Close()
			return fmt.Errorf("write dictionary entry: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush dictionary file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close dictionary file: %w", err)
	}
	return nil
}
