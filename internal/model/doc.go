// Package model defines the data types that flow through the extraction
// pipeline: page records produced by the segmenter, redirect edges and page
// metadata produced by the extractor, the site header decoded from the dump
// prolog, and the run-level state machine.
//
// Types in this package are plain data carriers. Each is created by exactly
// one pipeline stage and consumed by the next; none of them is shared
// concurrently except RunState, whose counters are atomic.
package model
