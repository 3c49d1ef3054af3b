package wikitext

import (
	"strings"
)

// urlSchemes are the prefixes recognized as external link targets.
var urlSchemes = []string{"http://", "https://", "ftp://", "//"}

// parseInline scans the region [start, end) for inline markup.
func (p *parser) parseInline(start, end int) ([]Node, error) {
	var nodes []Node
	textStart := start
	i := start

	flush := func(upto int) {
		if upto > textStart {
			nodes = append(nodes, Text{Span: Span{textStart, upto}, Value: p.src[textStart:upto]})
		}
	}

	for i < end {
		switch {
		case strings.HasPrefix(p.src[i:end], "<!--"):
			flush(i)
			if at := strings.Index(p.src[i:end], "-->"); at >= 0 {
				i += at + len("-->")
			} else {
				i = end
			}
			textStart = i

		case hasTagPrefix(p.src[i:end], "<ref"):
			flush(i)
			i = skipRef(p.src, i, end)
			textStart = i

		case hasTagPrefix(p.src[i:end], "<nowiki"):
			flush(i)
			tagStart := i
			var literal string
			literal, i = takeNowiki(p.src, i, end)
			if literal != "" {
				nodes = append(nodes, Text{Span: Span{tagStart, i}, Value: literal})
			}
			textStart = i

		case hasTagPrefix(p.src[i:end], "<br"):
			flush(i)
			nodes = append(nodes, LineBreak{Span{i, skipTag(p.src, i, end)}})
			i = skipTag(p.src, i, end)
			textStart = i

		case p.src[i] == '<' && looksLikeTag(p.src[i:end]):
			// Unhandled HTML tag. The tag itself is dropped, its content
			// flows through as ordinary text.
			flush(i)
			i = skipTag(p.src, i, end)
			textStart = i

		case strings.HasPrefix(p.src[i:end], "[["):
			flush(i)
			link, next, err := p.parseLink(i, end)
			if err != nil {
				return nil, err
			}
			if link != nil {
				nodes = append(nodes, *link)
			}
			i = next
			textStart = i

		case p.src[i] == '[' && hasURLPrefix(p.src[i+1:end]):
			flush(i)
			ext, next := p.parseExternalLink(i, end)
			if ext != nil {
				nodes = append(nodes, *ext)
				i = next
				textStart = i
			} else {
				// No closing bracket; the [ is literal.
				i++
			}

		case strings.HasPrefix(p.src[i:end], "{{{"):
			flush(i)
			// Template parameter placeholder. Meaningless outside template
			// expansion, so it is dropped.
			close3 := strings.Index(p.src[i:end], "}}}")
			if close3 < 0 {
				return nil, &ParseError{Offset: i, Construct: "template parameter"}
			}
			i += close3 + len("}}}")
			textStart = i

		case strings.HasPrefix(p.src[i:end], "{{"):
			flush(i)
			tpl, next, err := p.parseTemplate(i, end)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, tpl)
			i = next
			textStart = i

		case strings.HasPrefix(p.src[i:end], "'''''"):
			flush(i)
			nodes = append(nodes, BoldItalic{Span{i, i + 5}})
			i += 5
			textStart = i

		case strings.HasPrefix(p.src[i:end], "'''"):
			flush(i)
			nodes = append(nodes, Bold{Span{i, i + 3}})
			i += 3
			textStart = i

		case strings.HasPrefix(p.src[i:end], "''"):
			flush(i)
			nodes = append(nodes, Italic{Span{i, i + 2}})
			i += 2
			textStart = i

		default:
			i++
		}
	}

	flush(end)
	return nodes, nil
}

// hasTagPrefix reports whether s begins with the tag prefix followed by a
// tag-terminating character, so "<refine>" does not match "<ref".
func hasTagPrefix(s, prefix string) bool {
	if !strings.HasPrefix(strings.ToLower(s), prefix) {
		return false
	}
	if len(s) == len(prefix) {
		return false
	}
	c := s[len(prefix)]
	return c == '>' || c == ' ' || c == '/' || c == '\n' || c == '\t'
}

// looksLikeTag reports whether s begins with something shaped like an HTML
// tag, as opposed to a literal < in prose.
func looksLikeTag(s string) bool {
	if len(s) < 2 {
		return false
	}
	c := s[1]
	return c == '/' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// skipTag advances past a single <...> tag.
func skipTag(src string, i, end int) int {
	if at := strings.IndexByte(src[i:end], '>'); at >= 0 {
		return i + at + 1
	}
	return end
}

// skipRef advances past a <ref> element, including its body. References are
// citations, not prose, and are never extracted. An unterminated ref
// swallows the rest of the region.
func skipRef(src string, i, end int) int {
	tagEnd := skipTag(src, i, end)
	if tagEnd > i+1 && src[tagEnd-2] == '/' {
		return tagEnd
	}
	if at := strings.Index(strings.ToLower(src[tagEnd:end]), "</ref>"); at >= 0 {
		return tagEnd + at + len("</ref>")
	}
	return end
}

// takeNowiki returns the literal content of a <nowiki> element and the
// position after it.
func takeNowiki(src string, i, end int) (string, int) {
	tagEnd := skipTag(src, i, end)
	if tagEnd > i+1 && src[tagEnd-2] == '/' {
		return "", tagEnd
	}
	if at := strings.Index(strings.ToLower(src[tagEnd:end]), "</nowiki>"); at >= 0 {
		return src[tagEnd : tagEnd+at], tagEnd + at + len("</nowiki>")
	}
	return src[tagEnd:end], end
}

func hasURLPrefix(s string) bool {
	for _, scheme := range urlSchemes {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}

// matchPair returns the index just past the matching closer for the opener
// at i, honoring nesting, or -1 when unbalanced.
func matchPair(src string, i, end int, opener, closer string) int {
	depth := 0
	for i < end {
		switch {
		case strings.HasPrefix(src[i:end], opener):
			depth++
			i += len(opener)
		case strings.HasPrefix(src[i:end], closer):
			depth--
			i += len(closer)
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return -1
}

// splitTopLevel returns the | separator positions at nesting depth zero
// within [start, end).
func splitTopLevel(src string, start, end int) []int {
	var seps []int
	depth := 0
	i := start
	for i < end {
		switch {
		case strings.HasPrefix(src[i:end], "[["), strings.HasPrefix(src[i:end], "{{"):
			depth++
			i += 2
		case strings.HasPrefix(src[i:end], "]]"), strings.HasPrefix(src[i:end], "}}"):
			depth--
			i += 2
		case src[i] == '|' && depth == 0:
			seps = append(seps, i)
			i++
		default:
			i++
		}
	}
	return seps
}

// parseLink parses an internal [[...]] link at i. Media inclusions
// ([[File:...]] and friends) return a nil node: they are markup plumbing,
// not prose.
func (p *parser) parseLink(i, end int) (*Link, int, error) {
	next := matchPair(p.src, i, end, "[[", "]]")
	if next < 0 {
		return nil, 0, &ParseError{Offset: i, Construct: "link"}
	}

	inner := Span{i + 2, next - 2}
	seps := splitTopLevel(p.src, inner.Start, inner.End)

	targetEnd := inner.End
	if len(seps) > 0 {
		targetEnd = seps[0]
	}
	target := strings.TrimSpace(p.src[inner.Start:targetEnd])

	if isMediaLink(target) {
		return nil, next, nil
	}

	link := &Link{Span: Span{i, next}, Target: target}
	if len(seps) > 0 {
		cs := seps[len(seps)-1] + 1
		content, err := p.parseInline(cs, inner.End)
		if err != nil {
			return nil, 0, err
		}
		link.Content = content
	}
	return link, next, nil
}

// mediaPrefixes are namespace prefixes whose links embed media rather than
// referencing an article.
var mediaPrefixes = []string{"file:", "image:", "media:", "category:"}

func isMediaLink(target string) bool {
	lower := strings.ToLower(target)
	for _, prefix := range mediaPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// parseExternalLink parses a [url label] link at i. Returns nil when the
// bracket never closes; external links are not strict.
func (p *parser) parseExternalLink(i, end int) (*ExternalLink, int) {
	at := strings.IndexByte(p.src[i:end], ']')
	if at < 0 {
		return nil, 0
	}
	next := i + at + 1
	inner := Span{i + 1, next - 1}

	target := p.src[inner.Start:inner.End]
	var content []Node
	if sp := strings.IndexByte(target, ' '); sp >= 0 {
		labelNodes, err := p.parseInline(inner.Start+sp+1, inner.End)
		if err == nil {
			content = labelNodes
		}
		target = target[:sp]
	}

	return &ExternalLink{Span: Span{i, next}, Target: target, Content: content}, next
}

// parseTemplate parses a {{...}} transclusion at i.
func (p *parser) parseTemplate(i, end int) (Template, int, error) {
	next := matchPair(p.src, i, end, "{{", "}}")
	if next < 0 {
		return Template{}, 0, &ParseError{Offset: i, Construct: "template"}
	}

	inner := Span{i + 2, next - 2}
	seps := splitTopLevel(p.src, inner.Start, inner.End)

	nameEnd := inner.End
	if len(seps) > 0 {
		nameEnd = seps[0]
	}
	tpl := Template{
		Span: Span{i, next},
		Name: strings.TrimSpace(p.src[inner.Start:nameEnd]),
	}

	prev := nameEnd
	for _, sep := range seps[1:] {
		tpl.Params = append(tpl.Params, p.src[prev+1:sep])
		prev = sep
	}
	if len(seps) > 0 {
		tpl.Params = append(tpl.Params, p.src[prev+1:inner.End])
	}

	return tpl, next, nil
}
