package wikitext

// Span is a half-open byte range [Start, End) into the parsed source.
type Span struct {
	Start int
	End   int
}

// Bounds returns the span itself, satisfying Node for embedders.
func (s Span) Bounds() Span {
	return s
}

// Node is any parsed markup element. All node types embed Span.
type Node interface {
	Bounds() Span
}

// Heading is a section heading. Level runs 1 through 6.
type Heading struct {
	Span
	Level   int
	Content []Node
}

// Paragraph is a run of prose lines separated from its neighbors by blank
// lines or block boundaries.
type Paragraph struct {
	Span
	Content []Node
}

// List is a run of list lines. Ordered distinguishes # lists from * lists.
type List struct {
	Span
	Ordered bool
	Items   []ListItem
}

// ListItem is one list line. Depth counts the leading markers, starting at 1.
type ListItem struct {
	Span
	Depth   int
	Content []Node
}

// DefinitionList is a run of ; and : lines.
type DefinitionList struct {
	Span
	Items []DefinitionItem
}

// DefinitionItem is one definition line. Term is true for ; lines.
type DefinitionItem struct {
	Span
	Term    bool
	Content []Node
}

// Preformatted is a run of space-indented lines.
type Preformatted struct {
	Span
	Content []Node
}

// Table is a {| ... |} block.
type Table struct {
	Span
	Caption []Node
	Rows    []TableRow
}

// TableRow is one table row.
type TableRow struct {
	Span
	Cells []TableCell
}

// TableCell is one table cell. Header is true for ! cells.
type TableCell struct {
	Span
	Header  bool
	Content []Node
}

// HorizontalRule is a ---- line.
type HorizontalRule struct {
	Span
}

// Text is a literal run of characters.
type Text struct {
	Span
	Value string
}

// Bold, Italic and BoldItalic are style toggles. MediaWiki quotes do not
// nest like brackets; consumers track on/off state while walking.
type (
	Bold       struct{ Span }
	Italic     struct{ Span }
	BoldItalic struct{ Span }
)

// Link is an internal [[...]] link.
type Link struct {
	Span
	// Target is the linked page title, before any # fragment.
	Target string
	// Content is the display text. Empty means the target displays itself.
	Content []Node
}

// ExternalLink is a bracketed [url label] link.
type ExternalLink struct {
	Span
	Target  string
	Content []Node
}

// Template is a {{...}} transclusion. Templates expand server-side; a dump
// carries only the invocation, so text extraction drops them.
type Template struct {
	Span
	Name   string
	Params []string
}

// LineBreak is an explicit <br> tag.
type LineBreak struct {
	Span
}

// Parsed is the result of parsing one page body.
type Parsed struct {
	Nodes []Node
	// RedirectTarget is non-empty when the body is a #REDIRECT page.
	RedirectTarget string
}
