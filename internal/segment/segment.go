package segment

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Caellian/wiki-extractor/internal/log"
	"github.com/Caellian/wiki-extractor/internal/model"
)

var (
	pageOpen     = []byte("<page>")
	pageClose    = []byte("</page>")
	siteinfoOpen = []byte("<siteinfo>")
	siteinfoEnd  = []byte("</siteinfo>")
)

// defaultMaxPageBytes caps a single page buffer. Pages larger than this are
// skipped rather than buffered.
const defaultMaxPageBytes = 64 << 20

// maxPrologBytes bounds how much of the document head is retained while
// looking for the siteinfo header.
const maxPrologBytes = 1 << 20

// ChunkSource yields successive plaintext chunks of a dump stream and io.EOF
// at the end. The decompress package's Reader satisfies it.
type ChunkSource interface {
	Next() ([]byte, error)
}

// state enumerates scanner positions in the document.
type state int

const (
	// stateProlog is before the first page, collecting the siteinfo header.
	stateProlog state = iota
	// stateOutside is between pages.
	stateOutside
	// stateInPage is inside a page, capturing its bytes.
	stateInPage
	// stateSkipping is inside an oversized page, discarding until it closes.
	stateSkipping
)

// Segmenter pulls page records out of a chunked dump stream.
// Not safe for concurrent use.
type Segmenter struct {
	src    ChunkSource
	logger *slog.Logger

	maxPage int
	state   state
	window  []byte
	page    *bytes.Buffer
	prolog  *bytes.Buffer

	site    *model.SiteInfo
	ordinal int
	skipped int64
}

// Option sets an option on a Segmenter.
type Option func(*Segmenter)

// WithMaxPageBytes sets the page buffer cap.
func WithMaxPageBytes(n int) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.maxPage = n
		}
	}
}

// WithLogger sets the logger used for skip diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Segmenter) {
		s.logger = logger
	}
}

// NewSegmenter creates a Segmenter reading from src.
func NewSegmenter(src ChunkSource, opts ...Option) *Segmenter {
	s := &Segmenter{
		src:     src,
		logger:  slog.Default(),
		maxPage: defaultMaxPageBytes,
		page:    new(bytes.Buffer),
		prolog:  new(bytes.Buffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SiteInfo returns the decoded siteinfo header, or nil if the document head
// has not been scanned yet or carried none. Populated by the time the first
// page record is returned.
func (s *Segmenter) SiteInfo() *model.SiteInfo {
	return s.site
}

// SkippedPages returns how many pages were dropped as malformed or oversized.
func (s *Segmenter) SkippedPages() int64 {
	return s.skipped
}

// Next returns the next well-formed page record, or io.EOF at the end of the
// stream. Malformed and oversized pages are skipped internally; they consume
// an ordinal and increment the skip tally but are never returned.
func (s *Segmenter) Next() (*model.PageRecord, error) {
	for {
		rec, found, err := s.scan()
		if err != nil {
			return nil, err
		}
		if found {
			return rec, nil
		}

		chunk, err := s.src.Next()
		if errors.Is(err, io.EOF) {
			return nil, s.finish()
		}
		if err != nil {
			return nil, err
		}
		s.window = append(s.window, chunk...)
	}
}

// scan consumes buffered bytes until a complete page is captured or the
// window is exhausted. found is false when more input is needed.
func (s *Segmenter) scan() (*model.PageRecord, bool, error) {
	for {
		switch s.state {
		case stateProlog, stateOutside:
			idx := bytes.Index(s.window, pageOpen)
			if idx < 0 {
				s.leaveTail(pageOpen)
				return nil, false, nil
			}
			if s.state == stateProlog {
				s.prologAppend(s.window[:idx])
				s.decodeSiteInfo()
			}
			s.window = s.window[idx+len(pageOpen):]
			s.page.Reset()
			s.page.Write(pageOpen)
			s.state = stateInPage

		case stateInPage:
			idx := bytes.Index(s.window, pageClose)
			if idx < 0 {
				keep := tailLen(len(s.window), pageClose)
				s.page.Write(s.window[:len(s.window)-keep])
				s.window = s.window[len(s.window)-keep:]
				if s.page.Len() > s.maxPage {
					s.dropPage("page exceeds size cap")
					s.state = stateSkipping
				}
				return nil, false, nil
			}
			s.page.Write(s.window[:idx+len(pageClose)])
			s.window = s.window[idx+len(pageClose):]
			s.state = stateOutside
			if s.page.Len() > s.maxPage {
				s.dropPage("page exceeds size cap")
				continue
			}

			rec, err := s.decodePage(s.page.Bytes())
			if err != nil {
				s.skipped++
				s.logger.Warn("skipping malformed page",
					slog.String(log.DiagKey, log.DiagSegmentation),
					slog.Int("ordinal", s.ordinal),
					slog.String("error", err.Error()))
				s.ordinal++
				continue
			}
			rec.Ordinal = s.ordinal
			s.ordinal++
			return rec, true, nil

		case stateSkipping:
			idx := bytes.Index(s.window, pageClose)
			if idx < 0 {
				s.leaveTail(pageClose)
				return nil, false, nil
			}
			s.window = s.window[idx+len(pageClose):]
			s.state = stateOutside
		}
	}
}

// leaveTail discards scanned window bytes, keeping enough tail for a marker
// split across the chunk boundary. In the prolog the discarded bytes are
// retained for siteinfo capture.
func (s *Segmenter) leaveTail(marker []byte) {
	keep := tailLen(len(s.window), marker)
	if s.state == stateProlog {
		s.prologAppend(s.window[:len(s.window)-keep])
	}
	s.window = append(s.window[:0], s.window[len(s.window)-keep:]...)
}

// tailLen returns how many trailing bytes must be kept so that a marker
// straddling the chunk boundary is still found.
func tailLen(have int, marker []byte) int {
	keep := len(marker) - 1
	if keep > have {
		keep = have
	}
	return keep
}

// prologAppend retains document head bytes up to the prolog bound.
func (s *Segmenter) prologAppend(b []byte) {
	if room := maxPrologBytes - s.prolog.Len(); room > 0 {
		if len(b) > room {
			b = b[:room]
		}
		s.prolog.Write(b)
	}
}

// dropPage records a page skip diagnostic and releases the page buffer.
func (s *Segmenter) dropPage(reason string) {
	s.skipped++
	s.logger.Warn("skipping page",
		slog.String(log.DiagKey, log.DiagSegmentation),
		slog.Int("ordinal", s.ordinal),
		slog.String("reason", reason))
	s.ordinal++
	s.page.Reset()
}

// finish handles end of input. A page left open at EOF means the archive was
// truncated; the partial page is dropped with a diagnostic.
func (s *Segmenter) finish() error {
	if s.state == stateProlog {
		s.prologAppend(s.window)
		s.decodeSiteInfo()
	}
	if s.state == stateInPage || s.state == stateSkipping {
		s.dropPage("truncated at end of stream")
		s.state = stateOutside
	}
	return io.EOF
}

// siteinfoXML mirrors the <siteinfo> header element.
type siteinfoXML struct {
	SiteName   string `xml:"sitename"`
	DBName     string `xml:"dbname"`
	Base       string `xml:"base"`
	Generator  string `xml:"generator"`
	Namespaces []struct {
		Key  int    `xml:"key,attr"`
		Name string `xml:",chardata"`
	} `xml:"namespaces>namespace"`
}

// decodeSiteInfo extracts and decodes the siteinfo header from the collected
// prolog, once. Header decoding is best-effort: a dump without one still
// segments fine, there is just no namespace table.
func (s *Segmenter) decodeSiteInfo() {
	if s.site != nil {
		return
	}
	head := s.prolog.Bytes()
	start := bytes.Index(head, siteinfoOpen)
	end := bytes.Index(head, siteinfoEnd)
	if start < 0 || end < start {
		return
	}

	var si siteinfoXML
	if err := xml.Unmarshal(head[start:end+len(siteinfoEnd)], &si); err != nil {
		s.logger.Warn("siteinfo header did not decode", slog.String("error", err.Error()))
		return
	}

	s.site = &model.SiteInfo{
		SiteName:   si.SiteName,
		DBName:     si.DBName,
		Base:       si.Base,
		Generator:  si.Generator,
		Namespaces: make(map[int]string, len(si.Namespaces)),
	}
	for _, ns := range si.Namespaces {
		s.site.Namespaces[ns.Key] = ns.Name
	}
}

// pageXML mirrors the subset of a dump <page> element this program consumes.
// Only the first revision element is decoded; article dumps carry exactly one.
type pageXML struct {
	Title    string `xml:"title"`
	NS       int    `xml:"ns"`
	ID       int64  `xml:"id"`
	Redirect *struct {
		Title string `xml:"title,attr"`
	} `xml:"redirect"`
	Revision struct {
		ID        int64  `xml:"id"`
		Timestamp string `xml:"timestamp"`
		Model     string `xml:"model"`
		Format    string `xml:"format"`
		Text      string `xml:"text"`
	} `xml:"revision"`
}

// decodePage unmarshals one captured page element into a record.
func (s *Segmenter) decodePage(raw []byte) (*model.PageRecord, error) {
	var p pageXML
	if err := xml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode page element: %w", err)
	}
	if p.Title == "" {
		return nil, errors.New("page element has no title")
	}

	rec := &model.PageRecord{
		ID:         p.ID,
		Title:      p.Title,
		Namespace:  p.NS,
		RevisionID: p.Revision.ID,
		Model:      p.Revision.Model,
		Format:     p.Revision.Format,
		Text:       p.Revision.Text,
	}
	if p.Redirect != nil {
		rec.Redirect = true
		rec.RedirectTarget = p.Redirect.Title
	}
	if p.Revision.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, p.Revision.Timestamp); err == nil {
			rec.Timestamp = ts
		}
	}
	return rec, nil
}
