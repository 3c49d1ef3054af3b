// Package pipeline wires the extraction stages into one supervised run.
//
// The pipeline is a pull-then-push hybrid: the producer goroutine pulls
// bytes through source, decompression and segmentation, and pushes page
// records into a bounded channel. A parse stage turns records into extracted
// results, optionally on several workers, and the sink stage routes results
// to the output files in archive order. Bounded channels give backpressure
// end to end: a slow disk stalls the download rather than growing a queue.
//
// Failure semantics follow the error taxonomy of the stages themselves.
// Fatal errors (unreadable source, corrupt archive, failed write) cancel the
// whole run via errgroup; per-page problems were already absorbed upstream
// as diagnostics. Cancellation is cooperative and the caller flushes sinks
// afterwards, so a cancelled run still leaves usable partial output.
package pipeline
