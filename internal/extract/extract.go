package extract

import (
	"strings"

	"github.com/Caellian/wiki-extractor/internal/config"
	"github.com/Caellian/wiki-extractor/internal/wikitext"
)

// skipSections are the boilerplate section headings dropped from every
// article, compared case-insensitively.
var skipSections = map[string]struct{}{
	"see also":        {},
	"references":      {},
	"further reading": {},
	"external links":  {},
}

// Extractor renders parsed pages into text units.
type Extractor struct {
	opts config.TextOptions
}

// New creates an Extractor with the given rendering options.
func New(opts config.TextOptions) *Extractor {
	return &Extractor{opts: opts}
}

// Result is the extracted content of one page body.
type Result struct {
	// Units are the text units to write, in document order.
	Units []string
	// Degraded is true when the markup failed to parse and Units holds the
	// raw body as a single unformatted unit.
	Degraded bool
	// RedirectTarget is set when the body turned out to be a redirect.
	RedirectTarget string
}

// Extract parses and renders one page body. It never fails: unparseable
// markup degrades to the raw text instead.
func (e *Extractor) Extract(body string) Result {
	parsed, err := wikitext.Parse(body)
	if err != nil {
		unit := CollapseWhitespace(MapEntities(body))
		res := Result{Degraded: true}
		if unit != "" {
			res.Units = []string{unit}
		}
		return res
	}
	if parsed.RedirectTarget != "" {
		return Result{RedirectTarget: parsed.RedirectTarget}
	}
	return Result{Units: e.render(parsed.Nodes)}
}

// render walks block nodes, tracking section skipping.
func (e *Extractor) render(nodes []wikitext.Node) []string {
	var units []string

	// emit applies the sentence filter to itemized content such as list
	// items and table cells. Paragraphs and structural units go through
	// emitRaw unconditionally.
	emit := func(unit string) {
		if unit == "" {
			return
		}
		if e.opts.OnlySentences && !sentenceLike(unit) {
			return
		}
		units = append(units, unit)
	}
	emitRaw := func(unit string) {
		if unit != "" {
			units = append(units, unit)
		}
	}

	skipLevel := 0
	for _, n := range nodes {
		if h, ok := n.(wikitext.Heading); ok {
			title := CollapseWhitespace(MapEntities(e.inline(h.Content)))
			if skipLevel > 0 && h.Level <= skipLevel {
				skipLevel = 0
			}
			if skipLevel > 0 {
				continue
			}
			if _, skip := skipSections[strings.ToLower(title)]; skip {
				skipLevel = h.Level
				continue
			}
			if e.opts.IncludeHeadings {
				emitRaw(e.heading(title, h.Level))
			}
			continue
		}
		if skipLevel > 0 {
			continue
		}

		switch v := n.(type) {
		case wikitext.Paragraph:
			emitRaw(CollapseWhitespace(MapEntities(e.inline(v.Content))))

		case wikitext.List:
			for _, item := range v.Items {
				text := CollapseWhitespace(MapEntities(e.inline(item.Content)))
				if text == "" {
					continue
				}
				if e.opts.Markdown {
					emitRaw(markdownListItem(text, item.Depth, v.Ordered))
				} else {
					emit(text)
				}
			}

		case wikitext.DefinitionList:
			for _, item := range v.Items {
				text := CollapseWhitespace(MapEntities(e.inline(item.Content)))
				if text == "" {
					continue
				}
				if e.opts.Markdown && item.Term {
					emitRaw("**" + text + "**")
				} else if e.opts.Markdown {
					emitRaw("- " + text)
				} else {
					emit(text)
				}
			}

		case wikitext.Preformatted:
			if !e.opts.IncludePreformatted {
				continue
			}
			text := MapEntities(e.inline(v.Content))
			if e.opts.Markdown {
				emitRaw(indentLines(text))
			} else {
				for _, line := range strings.Split(text, "\n") {
					emitRaw(CollapseWhitespace(line))
				}
			}

		case wikitext.Table:
			if !e.opts.IncludeTables {
				continue
			}
			e.renderTable(v, emit, emitRaw)

		case wikitext.HorizontalRule:
			if e.opts.Markdown {
				emitRaw("---")
			}
		}
	}

	return units
}

// heading formats a section heading unit.
func (e *Extractor) heading(title string, level int) string {
	if title == "" {
		return ""
	}
	if e.opts.Markdown {
		return strings.Repeat("#", level) + " " + title
	}
	return title
}

func markdownListItem(text string, depth int, ordered bool) string {
	indent := strings.Repeat("  ", depth-1)
	if ordered {
		return indent + "1. " + text
	}
	return indent + "- " + text
}

func indentLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}

// renderTable emits a table either as markdown rows or as plain cell text.
func (e *Extractor) renderTable(t wikitext.Table, emit, emitRaw func(string)) {
	caption := CollapseWhitespace(MapEntities(e.inline(t.Caption)))
	if caption != "" {
		if e.opts.Markdown {
			emitRaw("**" + caption + "**")
		} else {
			emit(caption)
		}
	}

	for ri, row := range t.Rows {
		var cells []string
		header := false
		for _, cell := range row.Cells {
			cells = append(cells, CollapseWhitespace(MapEntities(e.inline(cell.Content))))
			header = header || cell.Header
		}
		if len(cells) == 0 {
			continue
		}

		if e.opts.Markdown {
			emitRaw("| " + strings.Join(cells, " | ") + " |")
			if header && ri == 0 {
				seps := make([]string, len(cells))
				for i := range seps {
					seps[i] = "---"
				}
				emitRaw("| " + strings.Join(seps, " | ") + " |")
			}
		} else {
			emit(strings.Join(cells, " "))
		}
	}
}

// inline renders inline nodes to a single string. Entity mapping and
// whitespace collapsing are the caller's job so spans of raw text are only
// transformed once.
func (e *Extractor) inline(nodes []wikitext.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch v := n.(type) {
		case wikitext.Text:
			b.WriteString(v.Value)

		case wikitext.Link:
			if len(v.Content) > 0 {
				b.WriteString(e.inline(v.Content))
			} else {
				target := v.Target
				if i := strings.IndexByte(target, '#'); i >= 0 {
					target = target[:i]
				}
				b.WriteString(target)
			}

		case wikitext.ExternalLink:
			label := e.inline(v.Content)
			switch {
			case e.opts.Markdown && label != "":
				b.WriteString("[" + label + "](" + v.Target + ")")
			case label != "":
				b.WriteString(label)
			case e.opts.Markdown:
				b.WriteString(v.Target)
			}

		case wikitext.Bold:
			if e.opts.Markdown {
				b.WriteString("**")
			}

		case wikitext.Italic:
			if e.opts.Markdown {
				b.WriteString("*")
			}

		case wikitext.BoldItalic:
			if e.opts.Markdown {
				b.WriteString("***")
			}

		case wikitext.LineBreak:
			b.WriteString(" ")
		}
	}
	return b.String()
}

// sentenceTerminators close a sentence-like unit. Closing quotes and
// brackets after the punctuation are tolerated.
const sentenceTerminators = ".!?"

const trailingClosers = "\"')]»”’"

func sentenceLike(unit string) bool {
	s := strings.TrimRight(unit, trailingClosers)
	if s == "" {
		return false
	}
	return strings.ContainsRune(sentenceTerminators, rune(s[len(s)-1]))
}
