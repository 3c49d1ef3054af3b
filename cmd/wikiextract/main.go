// Package main provides the entry point for the wikiextract CLI.
//
// wikiextract streams Wikipedia XML dumps and derives text corpora from
// them: a sentence dump, a word-frequency dictionary, a redirect index,
// and a page metadata listing.
//
// Usage:
//
//	wikiextract extract --language hr
//	wikiextract extract ./hrwiki-20260801-pages-articles.xml.bz2
//
// See --help for all available options.
package main

// main is the entry point for wikiextract.
func main() {
	Execute()
}
