// Package segment splits a decompressed dump stream into page records.
//
// A dump file is one enormous XML document, far too large to load. Instead of
// a document parser, the segmenter runs a byte-level scanner over plaintext
// chunks, looking for the <page> and </page> markers that MediaWiki emits one
// per line. MediaWiki escapes markup inside text nodes, so the literal
// markers cannot occur inside a page body and marker scanning is exact.
// Only the bytes of a single page are ever buffered; each captured page is
// then decoded on its own with encoding/xml. A page that fails to decode, or
// that exceeds the configured size cap, is skipped with a diagnostic and the
// scan resumes at the next marker, so one broken page never ends a run.
//
// The <siteinfo> header preceding the first page is captured as well, giving
// downstream consumers the namespace table for the wiki being processed.
package segment
