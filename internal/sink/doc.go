// Package sink writes the extraction artifacts.
//
// Four sinks cover the four generators: the text dump, the word-frequency
// dictionary, the redirect index and the page metadata listing. All of them
// write incrementally where the format allows it, so an interrupted run
// leaves usable partial files behind. The Multiplexer fans one extracted
// page out to whichever sinks a run enabled and closes them best-effort,
// flushing every sink even when one of them fails.
package sink
