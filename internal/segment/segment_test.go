package segment

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Caellian/wiki-extractor/internal/log"
	"github.com/Caellian/wiki-extractor/internal/model"
)

// chunkedSource feeds pre-split chunks to the segmenter.
type chunkedSource struct {
	chunks [][]byte
}

func (c *chunkedSource) Next() ([]byte, error) {
	if len(c.chunks) == 0 {
		return nil, io.EOF
	}
	chunk := c.chunks[0]
	c.chunks = c.chunks[1:]
	return chunk, nil
}

// splitEvery splits a document into fixed-size chunks.
func splitEvery(doc string, n int) *chunkedSource {
	src := &chunkedSource{}
	for len(doc) > 0 {
		end := n
		if end > len(doc) {
			end = len(doc)
		}
		src.chunks = append(src.chunks, []byte(doc[:end]))
		doc = doc[end:]
	}
	return src
}

const sampleDump = `<mediawiki xml:lang="hr">
  <siteinfo>
    <sitename>Wikipedija</sitename>
    <dbname>hrwiki</dbname>
    <base>https://hr.wikipedia.org/wiki/Glavna_stranica</base>
    <generator>MediaWiki 1.43.0</generator>
    <namespaces>
      <namespace key="0" />
      <namespace key="1">Razgovor</namespace>
      <namespace key="10">Predlo&#382;ak</namespace>
    </namespaces>
  </siteinfo>
  <page>
    <title>Zagreb</title>
    <ns>0</ns>
    <id>42</id>
    <revision>
      <id>1001</id>
      <timestamp>2026-08-01T12:00:00Z</timestamp>
      <model>wikitext</model>
      <format>text/x-wiki</format>
      <text>'''Zagreb''' je glavni grad.</text>
    </revision>
  </page>
  <page>
    <title>ZG</title>
    <ns>0</ns>
    <id>43</id>
    <redirect title="Zagreb" />
    <revision>
      <id>1002</id>
      <model>wikitext</model>
      <format>text/x-wiki</format>
      <text>#REDIRECT [[Zagreb]]</text>
    </revision>
  </page>
  <page>
    <title>Razgovor:Zagreb</title>
    <ns>1</ns>
    <id>44</id>
    <revision>
      <id>1003</id>
      <model>wikitext</model>
      <format>text/x-wiki</format>
      <text>Comment with a literal &lt;/page&gt; marker inside.</text>
    </revision>
  </page>
</mediawiki>
`

// drainRecords pulls all records out of a segmenter.
func drainRecords(t *testing.T, s *Segmenter) []*model.PageRecord {
	t.Helper()

	var out []*model.PageRecord
	for {
		rec, err := s.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out = append(out, rec)
	}
}

// TestNext tests record extraction and siteinfo capture.
func TestNext(t *testing.T) {
	t.Parallel()

	s := NewSegmenter(splitEvery(sampleDump, 64))
	records := drainRecords(t, s)

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.Ordinal != 0 || first.ID != 42 || first.Title != "Zagreb" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.RevisionID != 1001 || first.Model != "wikitext" || first.Format != "text/x-wiki" {
		t.Errorf("unexpected revision metadata: %+v", first)
	}
	want := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("expected timestamp %v, got %v", want, first.Timestamp)
	}
	if first.Text != "'''Zagreb''' je glavni grad." {
		t.Errorf("unexpected body %q", first.Text)
	}
	if !first.IsArticle() {
		t.Error("expected main-namespace non-redirect to be an article")
	}

	second := records[1]
	if !second.Redirect || second.RedirectTarget != "Zagreb" {
		t.Errorf("expected redirect to Zagreb, got %+v", second)
	}
	if second.IsArticle() {
		t.Error("redirects are not articles")
	}

	third := records[2]
	if third.Namespace != 1 || third.Ordinal != 2 {
		t.Errorf("unexpected third record: %+v", third)
	}
	if !strings.Contains(third.Text, "</page>") {
		t.Errorf("expected escaped marker to be decoded in body, got %q", third.Text)
	}

	site := s.SiteInfo()
	if site == nil {
		t.Fatal("expected siteinfo to be captured")
	}
	if site.SiteName != "Wikipedija" || site.DBName != "hrwiki" {
		t.Errorf("unexpected siteinfo: %+v", site)
	}
	if site.NamespaceName(1) != "Razgovor" {
		t.Errorf("unexpected namespace 1 name %q", site.NamespaceName(1))
	}
	if site.NamespaceName(0) != "" {
		t.Errorf("expected empty main namespace name, got %q", site.NamespaceName(0))
	}
}

// TestNextChunkBoundaries tests that segmentation output is identical for
// every possible chunk size, including markers split across chunks.
func TestNextChunkBoundaries(t *testing.T) {
	t.Parallel()

	baseline := drainRecords(t, NewSegmenter(splitEvery(sampleDump, len(sampleDump))))

	for _, size := range []int{1, 2, 3, 5, 7, 16, 61, 256, 4096} {
		s := NewSegmenter(splitEvery(sampleDump, size))
		records := drainRecords(t, s)
		if len(records) != len(baseline) {
			t.Fatalf("chunk size %d: expected %d records, got %d", size, len(baseline), len(records))
		}
		for i := range records {
			if *records[i] != *baseline[i] {
				t.Errorf("chunk size %d: record %d differs: %+v vs %+v",
					size, i, records[i], baseline[i])
			}
		}
		if s.SiteInfo() == nil {
			t.Errorf("chunk size %d: siteinfo lost", size)
		}
	}
}

// TestNextMalformedPage tests that a broken page is skipped with a diagnostic
// and the following pages still come through with correct ordinals.
func TestNextMalformedPage(t *testing.T) {
	t.Parallel()

	doc := `<mediawiki>
  <page>
    <title>Good</title><ns>0</ns><id>1</id>
    <revision><id>10</id><text>first</text></revision>
  </page>
  <page>
    <title>Broken</title><ns>0</ns><id>2</id>
    <revision><id>11</id><text>unclosed element<b></text></revision>
  </page>
  <page>
    <title>Also good</title><ns>0</ns><id>3</id>
    <revision><id>12</id><text>third</text></revision>
  </page>
</mediawiki>`

	diag := log.NewDiagnosticHandler(slog.NewTextHandler(io.Discard, nil))
	s := NewSegmenter(splitEvery(doc, 32), WithLogger(slog.New(diag)))
	records := drainRecords(t, s)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Title != "Good" || records[0].Ordinal != 0 {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].Title != "Also good" || records[1].Ordinal != 2 {
		t.Errorf("expected skipped page to consume an ordinal: %+v", records[1])
	}
	if s.SkippedPages() != 1 {
		t.Errorf("expected 1 skipped page, got %d", s.SkippedPages())
	}
	if diag.Count(log.DiagSegmentation) != 1 {
		t.Errorf("expected 1 segmentation diagnostic, got %d", diag.Count(log.DiagSegmentation))
	}
}

// TestNextOversizedPage tests that a page above the cap is dropped without
// buffering it whole.
func TestNextOversizedPage(t *testing.T) {
	t.Parallel()

	huge := strings.Repeat("x", 4096)
	doc := `<mediawiki>
  <page>
    <title>Huge</title><ns>0</ns><id>1</id>
    <revision><id>10</id><text>` + huge + `</text></revision>
  </page>
  <page>
    <title>Small</title><ns>0</ns><id>2</id>
    <revision><id>11</id><text>fits</text></revision>
  </page>
</mediawiki>`

	diag := log.NewDiagnosticHandler(slog.NewTextHandler(io.Discard, nil))
	s := NewSegmenter(splitEvery(doc, 128),
		WithMaxPageBytes(1024),
		WithLogger(slog.New(diag)))
	records := drainRecords(t, s)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Title != "Small" || records[0].Ordinal != 1 {
		t.Errorf("unexpected surviving record: %+v", records[0])
	}
	if diag.Count(log.DiagSegmentation) != 1 {
		t.Errorf("expected 1 diagnostic, got %d", diag.Count(log.DiagSegmentation))
	}
}

// TestNextTruncatedStream tests that a page left open at EOF is dropped.
func TestNextTruncatedStream(t *testing.T) {
	t.Parallel()

	doc := `<mediawiki>
  <page>
    <title>Complete</title><ns>0</ns><id>1</id>
    <revision><id>10</id><text>ok</text></revision>
  </page>
  <page>
    <title>Cut off</title><ns>0</ns><id>2</id>
    <revision><id>11</id><text>the stream ends mid-pa`

	s := NewSegmenter(splitEvery(doc, 50))
	records := drainRecords(t, s)

	if len(records) != 1 || records[0].Title != "Complete" {
		t.Fatalf("expected only the complete page, got %d records", len(records))
	}
	if s.SkippedPages() != 1 {
		t.Errorf("expected truncated page to be counted, got %d", s.SkippedPages())
	}
}

// TestNextNoSiteInfo tests a dump without a siteinfo header.
func TestNextNoSiteInfo(t *testing.T) {
	t.Parallel()

	doc := `<mediawiki><page><title>T</title><ns>0</ns><id>1</id>` +
		`<revision><id>2</id><text>body</text></revision></page></mediawiki>`

	s := NewSegmenter(splitEvery(doc, 16))
	records := drainRecords(t, s)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if s.SiteInfo() != nil {
		t.Error("expected nil siteinfo")
	}
	if s.SiteInfo().NamespaceName(0) != "" {
		t.Error("expected nil siteinfo to answer empty names")
	}
}
