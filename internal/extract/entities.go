package extract

import (
	"strconv"
	"strings"
)

// entityReplacer maps the named character references that commonly survive
// in dump bodies after XML decoding. MediaWiki leaves HTML entities in the
// wiki source untouched, so they arrive here verbatim.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&nbsp;", " ",
	"&thinsp;", " ",
	"&ensp;", " ",
	"&emsp;", " ",
	"&ndash;", "–",
	"&mdash;", "—",
	"&minus;", "−",
	"&times;", "×",
	"&deg;", "°",
	"&prime;", "′",
	"&Prime;", "″",
	"&laquo;", "«",
	"&raquo;", "»",
	"&lsquo;", "‘",
	"&rsquo;", "’",
	"&ldquo;", "“",
	"&rdquo;", "”",
	"&hellip;", "…",
	"&middot;", "·",
	"&bull;", "•",
	"&copy;", "©",
	"&reg;", "®",
	"&shy;", "",
	"&zwnj;", "",
	"&zwj;", "",
)

// MapEntities decodes character references in s: the named set above plus
// numeric &#NNN; and &#xHH; forms. Unknown references pass through verbatim.
func MapEntities(s string) string {
	s = entityReplacer.Replace(s)
	if !strings.Contains(s, "&#") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for {
		at := strings.Index(s, "&#")
		if at < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:at])
		rest := s[at:]

		end := strings.IndexByte(rest, ';')
		if end < 0 || end > 10 {
			b.WriteString("&#")
			s = rest[2:]
			continue
		}

		if r, ok := decodeNumeric(rest[2:end]); ok {
			b.WriteRune(r)
		} else {
			b.WriteString(rest[:end+1])
		}
		s = rest[end+1:]
	}
}

func decodeNumeric(digits string) (rune, bool) {
	base := 10
	if len(digits) > 1 && (digits[0] == 'x' || digits[0] == 'X') {
		base = 16
		digits = digits[1:]
	}
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil || n == 0 || n > 0x10ffff {
		return 0, false
	}
	return rune(n), true
}

// CollapseWhitespace squeezes every run of whitespace, newlines included,
// into a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
