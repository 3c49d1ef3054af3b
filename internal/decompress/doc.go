// Package decompress turns a dump byte stream into bounded plaintext chunks.
//
// Dump files arrive either bzip2-compressed or as plain XML. The format is
// sniffed from the stream itself so callers do not need to trust file names.
// Decompression is incremental: each call to Next yields at most one chunk of
// a configured size, which keeps memory flat no matter how large the dump is.
// Corrupt compressed input is reported with the byte offset where decoding
// failed so the problem can be located in the source file.
package decompress
