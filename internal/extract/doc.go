// Package extract turns parsed pages into the units the output sinks consume.
//
// The extractor renders markup nodes into plain or markdown text, filters
// out the boilerplate sections every Wikipedia article carries, and feeds
// the word-frequency dictionary. When a page's markup refuses to parse, the
// extractor degrades instead of dropping the page: the raw body is emitted
// as a single unformatted unit so no prose is lost.
package extract
