// Package source opens dump files as byte streams.
//
// Remote dump files are streamed over HTTP with transparent resume. When a
// transfer stalls or the connection drops mid-body, the stream reconnects
// with a Range request from the last delivered offset, up to a bounded number
// of attempts with exponential backoff. Local files are read directly. Both
// kinds hash the delivered bytes incrementally so the stream can be checked
// against the checksums a mirror advertises without a second pass.
package source
