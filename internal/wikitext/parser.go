package wikitext

import (
	"strings"
)

// Parse parses one page body. Redirect pages short-circuit: their body is
// boilerplate and only the target matters.
func Parse(src string) (*Parsed, error) {
	if target, ok := ParseRedirect(src); ok {
		return &Parsed{RedirectTarget: target}, nil
	}

	p := &parser{src: src}
	nodes, err := p.parseBlocks()
	if err != nil {
		return nil, err
	}
	return &Parsed{Nodes: nodes}, nil
}

// ParseRedirect recognizes a #REDIRECT body and returns its target title.
func ParseRedirect(src string) (string, bool) {
	s := strings.TrimLeft(src, " \t\r\n")
	if !strings.HasPrefix(strings.ToUpper(s), "#REDIRECT") {
		return "", false
	}
	open := strings.Index(s, "[[")
	end := strings.Index(s, "]]")
	if open < 0 || end < open {
		return "", false
	}
	target := s[open+2 : end]
	if i := strings.IndexAny(target, "|#"); i >= 0 {
		target = target[:i]
	}
	target = strings.TrimSpace(target)
	return target, target != ""
}

type parser struct {
	src string
	pos int
}

// line returns the bounds of the line at pos and the position after it.
func (p *parser) line(pos int) (start, end, next int) {
	start = pos
	if i := strings.IndexByte(p.src[pos:], '\n'); i >= 0 {
		return start, pos + i, pos + i + 1
	}
	return start, len(p.src), len(p.src)
}

// blockStart reports whether a line opens a non-paragraph block.
func blockStart(line string) bool {
	if line == "" {
		return false
	}
	switch line[0] {
	case '*', '#', ';', ':', '=', ' ':
		return true
	}
	return strings.HasPrefix(line, "{|") || strings.HasPrefix(line, "----")
}

func (p *parser) parseBlocks() ([]Node, error) {
	var nodes []Node

	for p.pos < len(p.src) {
		ls, le, next := p.line(p.pos)
		line := p.src[ls:le]
		trimmed := strings.TrimRight(line, " \t\r")

		switch {
		case strings.TrimSpace(line) == "":
			p.pos = next

		case strings.HasPrefix(line, "{|"):
			table, err := p.parseTable()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, table)

		case isHeading(trimmed):
			h, err := p.parseHeading(ls, ls+len(trimmed))
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, h)
			p.pos = next

		case line[0] == '*' || line[0] == '#':
			list, err := p.parseList()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, list)

		case line[0] == ';' || line[0] == ':':
			dl, err := p.parseDefinitionList()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, dl)

		case strings.HasPrefix(trimmed, "----"):
			nodes = append(nodes, HorizontalRule{Span{ls, le}})
			p.pos = next

		case line[0] == ' ':
			pre, err := p.parsePreformatted()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, pre)

		default:
			para, err := p.parseParagraph()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, para)
		}
	}

	return nodes, nil
}

// isHeading reports whether a right-trimmed line is a heading. Headings are
// wrapped in matching runs of = with non-empty content between.
func isHeading(line string) bool {
	if len(line) < 3 || line[0] != '=' || line[len(line)-1] != '=' {
		return false
	}
	lead := 0
	for lead < len(line) && line[lead] == '=' {
		lead++
	}
	trail := 0
	for trail < len(line) && line[len(line)-1-trail] == '=' {
		trail++
	}
	return lead+trail < len(line)
}

func (p *parser) parseHeading(start, end int) (Heading, error) {
	line := p.src[start:end]
	lead := 0
	for lead < len(line) && line[lead] == '=' {
		lead++
	}
	trail := 0
	for trail < len(line) && line[len(line)-1-trail] == '=' {
		trail++
	}
	level := lead
	if trail < level {
		level = trail
	}
	if level > 6 {
		level = 6
	}

	cs, ce := start+lead, end-trail
	for cs < ce && p.src[cs] == ' ' {
		cs++
	}
	for ce > cs && p.src[ce-1] == ' ' {
		ce--
	}

	content, err := p.parseInline(cs, ce)
	if err != nil {
		return Heading{}, err
	}
	return Heading{Span: Span{start, end}, Level: level, Content: content}, nil
}

func (p *parser) parseList() (List, error) {
	start := p.pos
	_, le, _ := p.line(p.pos)
	marker := p.src[start]

	var items []ListItem
	end := le
	for p.pos < len(p.src) {
		ls, le, next := p.line(p.pos)
		if ls >= len(p.src) || p.src[ls] != marker {
			break
		}

		depth := 0
		cs := ls
		for cs < le && (p.src[cs] == '*' || p.src[cs] == '#' || p.src[cs] == ':') {
			depth++
			cs++
		}
		for cs < le && p.src[cs] == ' ' {
			cs++
		}

		content, err := p.parseInline(cs, le)
		if err != nil {
			return List{}, err
		}
		items = append(items, ListItem{Span: Span{ls, le}, Depth: depth, Content: content})
		end = le
		p.pos = next
	}

	return List{Span: Span{start, end}, Ordered: marker == '#', Items: items}, nil
}

func (p *parser) parseDefinitionList() (DefinitionList, error) {
	start := p.pos

	var items []DefinitionItem
	end := start
	for p.pos < len(p.src) {
		ls, le, next := p.line(p.pos)
		if ls >= len(p.src) || (p.src[ls] != ';' && p.src[ls] != ':') {
			break
		}

		term := p.src[ls] == ';'
		cs := ls
		for cs < le && (p.src[cs] == ';' || p.src[cs] == ':') {
			cs++
		}
		for cs < le && p.src[cs] == ' ' {
			cs++
		}

		content, err := p.parseInline(cs, le)
		if err != nil {
			return DefinitionList{}, err
		}
		items = append(items, DefinitionItem{Span: Span{ls, le}, Term: term, Content: content})
		end = le
		p.pos = next
	}

	return DefinitionList{Span: Span{start, end}, Items: items}, nil
}

func (p *parser) parsePreformatted() (Preformatted, error) {
	start := p.pos

	var content []Node
	end := start
	for p.pos < len(p.src) {
		ls, le, next := p.line(p.pos)
		if ls >= le || p.src[ls] != ' ' || strings.TrimSpace(p.src[ls:le]) == "" {
			break
		}

		if len(content) > 0 {
			content = append(content, Text{Span: Span{ls - 1, ls}, Value: "\n"})
		}
		lineNodes, err := p.parseInline(ls+1, le)
		if err != nil {
			return Preformatted{}, err
		}
		content = append(content, lineNodes...)
		end = le
		p.pos = next
	}

	return Preformatted{Span: Span{start, end}, Content: content}, nil
}

// parseParagraph accumulates prose lines. Accumulation normally stops at a
// blank line or a block opener, but while braces or brackets are unbalanced
// it keeps going, so templates spanning multiple lines stay in one region.
func (p *parser) parseParagraph() (Paragraph, error) {
	start := p.pos
	_, le, next := p.line(p.pos)
	end := le
	balance := regionBalance(p.src[start:le])
	p.pos = next

	for p.pos < len(p.src) {
		ls, le, next := p.line(p.pos)
		line := p.src[ls:le]
		if balance <= 0 && (strings.TrimSpace(line) == "" || blockStart(line)) {
			break
		}
		balance += regionBalance(line)
		end = le
		p.pos = next
	}

	content, err := p.parseInline(start, end)
	if err != nil {
		return Paragraph{}, err
	}
	return Paragraph{Span: Span{start, end}, Content: content}, nil
}

// regionBalance counts unclosed braces and brackets in a region.
func regionBalance(s string) int {
	return strings.Count(s, "{{") - strings.Count(s, "}}") +
		strings.Count(s, "[[") - strings.Count(s, "]]")
}

func (p *parser) parseTable() (Table, error) {
	start := p.pos
	_, _, next := p.line(p.pos)
	p.pos = next

	table := Table{}
	depth := 1

	ensureRow := func() *TableRow {
		if len(table.Rows) == 0 {
			table.Rows = append(table.Rows, TableRow{})
		}
		return &table.Rows[len(table.Rows)-1]
	}
	lastCell := func() *TableCell {
		if len(table.Rows) == 0 {
			return nil
		}
		row := &table.Rows[len(table.Rows)-1]
		if len(row.Cells) == 0 {
			return nil
		}
		return &row.Cells[len(row.Cells)-1]
	}

	for {
		if p.pos >= len(p.src) {
			return Table{}, &ParseError{Offset: start, Construct: "table"}
		}
		ls, le, next := p.line(p.pos)
		line := p.src[ls:le]
		lt := strings.TrimLeft(line, " \t")
		indent := len(line) - len(lt)

		switch {
		case strings.HasPrefix(lt, "{|"):
			depth++

		case strings.HasPrefix(lt, "|}"):
			depth--
			if depth == 0 {
				table.Span = Span{start, le}
				p.pos = next
				return table, nil
			}

		case depth > 1:
			// Inside a nested table; its content is not extracted.

		case strings.HasPrefix(lt, "|+"):
			cs := ls + indent + 2
			for cs < le && p.src[cs] == ' ' {
				cs++
			}
			caption, err := p.parseInline(cs, le)
			if err != nil {
				return Table{}, err
			}
			table.Caption = caption

		case strings.HasPrefix(lt, "|-"):
			table.Rows = append(table.Rows, TableRow{Span: Span{ls, le}})

		case strings.HasPrefix(lt, "!"):
			cells, err := p.parseCells(ls+indent+1, le, "!!", true)
			if err != nil {
				return Table{}, err
			}
			row := ensureRow()
			row.Cells = append(row.Cells, cells...)

		case strings.HasPrefix(lt, "|"):
			cells, err := p.parseCells(ls+indent+1, le, "||", false)
			if err != nil {
				return Table{}, err
			}
			row := ensureRow()
			row.Cells = append(row.Cells, cells...)

		default:
			// Continuation of the previous cell across lines.
			if cell := lastCell(); cell != nil {
				nodes, err := p.parseInline(ls, le)
				if err != nil {
					return Table{}, err
				}
				cell.Content = append(cell.Content, nodes...)
			}
		}

		p.pos = next
	}
}

// parseCells splits one table line into cells on the given separator.
func (p *parser) parseCells(start, end int, sep string, header bool) ([]TableCell, error) {
	var cells []TableCell

	cs := start
	for cs <= end {
		ce := end
		if i := strings.Index(p.src[cs:end], sep); i >= 0 {
			ce = cs + i
		}

		vs := cellValueStart(p.src, cs, ce)
		content, err := p.parseInline(vs, ce)
		if err != nil {
			return nil, err
		}
		cells = append(cells, TableCell{Span: Span{cs, ce}, Header: header, Content: content})

		if ce == end {
			break
		}
		cs = ce + len(sep)
	}

	return cells, nil
}

// cellValueStart skips a leading attribute segment like style="..." | in a
// cell. A single pipe splits attributes from content when the prefix looks
// like attributes rather than prose.
func cellValueStart(src string, start, end int) int {
	seg := src[start:end]
	i := strings.Index(seg, "|")
	if i < 0 {
		return start
	}
	prefix := seg[:i]
	if strings.Contains(prefix, "=") &&
		!strings.Contains(prefix, "[[") &&
		!strings.Contains(prefix, "{{") {
		return start + i + 1
	}
	return start
}
