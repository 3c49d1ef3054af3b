// Package mirror resolves Wikipedia dump mirrors into concrete dump file lists.
//
// A dump mirror publishes a dumpstatus.json manifest per language and version.
// This package fetches and interprets that manifest, filters it down to the
// articles job, and produces an ordered list of dump files together with the
// checksums the mirror advertises for them. Local files and directories are
// wrapped into the same Dump shape so the rest of the program does not care
// where the bytes come from.
package mirror
