package model

import "time"

// PageRecord is one page as delimited in the dump XML: decoded metadata plus
// the raw wiki-markup body with the surrounding XML stripped.
//
// A record is created by the segmenter, owned exclusively by the stage
// currently holding it, and dropped once the extractor has consumed it.
// Text holds exactly one page's body and nothing else.
type PageRecord struct {
	// Ordinal is the zero-based position of the page in the archive.
	// It is assigned to every page the segmenter opens, including pages
	// later skipped as malformed, so downstream ordering diagnostics can
	// name the archive position of a failure.
	Ordinal int

	// ID is the numeric page id from the <id> element.
	ID int64

	// Title is the page title, XML-decoded.
	Title string

	// Namespace is the numeric namespace key from the <ns> element.
	Namespace int

	// RevisionID is the id of the revision the body was taken from.
	RevisionID int64

	// Timestamp is the revision timestamp. Zero if the dump omitted it
	// or it failed to parse; metadata is best-effort.
	Timestamp time.Time

	// Model and Format describe the revision content type. Bodies whose
	// model is not "wikitext" are not parseable as wiki markup and are
	// skipped with a diagnostic.
	Model  string
	Format string

	// Redirect is true if the page carried a <redirect> element.
	// RedirectTarget is that element's title attribute.
	Redirect       bool
	RedirectTarget string

	// Text is the raw wiki-markup body of the newest revision.
	Text string
}

// IsArticle reports whether the page is in the main namespace and is not a
// redirect, i.e. whether it can contribute prose to the text dump.
func (p *PageRecord) IsArticle() bool {
	return p.Namespace == 0 && !p.Redirect
}

// WikitextModel is the revision model value for pages carrying wiki markup.
const WikitextModel = "wikitext"

// WikitextFormat is the revision format value for pages carrying wiki markup.
const WikitextFormat = "text/x-wiki"

// HasWikitext reports whether the revision body can be handed to the markup
// parser. Dumps occasionally contain Scribunto modules, JSON content models
// and similar; those are skipped rather than parsed.
func (p *PageRecord) HasWikitext() bool {
	if p.Model != "" && p.Model != WikitextModel {
		return false
	}
	if p.Format != "" && p.Format != WikitextFormat {
		return false
	}
	return true
}
