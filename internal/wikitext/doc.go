// Package wikitext parses MediaWiki markup into a flat tree of typed nodes.
//
// The grammar implemented here is the pragmatic subset a text extractor
// needs: headings, paragraphs, lists, tables, preformatted blocks, links,
// external links, templates, style toggles, comments and ref tags. Every
// node carries the byte span it was parsed from, so consumers can slice the
// original markup instead of reassembling strings.
//
// Parsing is strict about bracket balance. An unterminated template, link or
// table is a ParseError rather than a guess, which lets the caller fall back
// to emitting the raw text of the page instead of silently truncated output.
package wikitext
