package sink

import (
	"errors"
	"fmt"

	"github.com/Caellian/wiki-extractor/internal/extract"
	"github.com/Caellian/wiki-extractor/internal/model"
)

// Multiplexer fans one extracted page out to the enabled sinks. Any field
// may be nil; a nil sink means that generator is off for the run.
type Multiplexer struct {
	Text       *TextSink
	Dictionary *extract.Dictionary
	DictFile   *DictionarySink
	Redirects  *RedirectSink
	Metadata   *MetadataSink
}

// Page routes one page's extracted content.
func (m *Multiplexer) Page(units []string, edge *model.RedirectEdge, meta *model.PageMeta) error {
	if m.Text != nil && len(units) > 0 {
		if err := m.Text.WriteUnits(units); err != nil {
			return err
		}
	}
	if m.Dictionary != nil {
		for _, unit := range units {
			m.Dictionary.Add(unit)
		}
	}
	if m.Redirects != nil && edge != nil {
		if err := m.Redirects.Add(*edge); err != nil {
			return err
		}
	}
	if m.Metadata != nil && meta != nil {
		if err := m.Metadata.Write(*meta); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every enabled sink. Closing is best-effort: a failure in one
// sink does not keep the others from flushing, and all failures are joined.
func (m *Multiplexer) Close() error {
	var errs []error
	if m.Text != nil {
		if err := m.Text.Close(); err != nil {
			errs = append(errs, fmt.Errorf("text sink: %w", err))
		}
	}
	if m.DictFile != nil {
		if err := m.DictFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("dictionary sink: %w", err))
		}
	}
	if m.Redirects != nil {
		if err := m.Redirects.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redirect sink: %w", err))
		}
	}
	if m.Metadata != nil {
		if err := m.Metadata.Close(); err != nil {
			errs = append(errs, fmt.Errorf("metadata sink: %w", err))
		}
	}
	return errors.Join(errs...)
}
