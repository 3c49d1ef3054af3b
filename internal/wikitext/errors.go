package wikitext

import "fmt"

// ParseError reports markup the parser refuses to guess about, such as a
// template or link opened but never closed. Offset is the byte position of
// the offending construct in the source.
type ParseError struct {
	Offset    int
	Construct string
}

// Error returns the error message.
func (e *ParseError) Error() string {
	return fmt.Sprintf("wikitext: unterminated %s at offset %d", e.Construct, e.Offset)
}
