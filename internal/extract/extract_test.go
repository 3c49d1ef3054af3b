package extract

import (
	"strings"
	"testing"

	"github.com/Caellian/wiki-extractor/internal/config"
)

// plainOpts renders plain text without the sentence filter.
func plainOpts() config.TextOptions {
	return config.TextOptions{IncludeTables: true}
}

// TestExtractPlain tests plain-text rendering of typical article markup.
func TestExtractPlain(t *testing.T) {
	t.Parallel()

	body := "'''Zagreb''' is the capital of [[Croatia]].\n\n" +
		"== History ==\nThe city was founded in 1094.<ref>Charter</ref>\n\n" +
		"== See also ==\n* [[Split]]\n\n" +
		"== Geography ==\nIt lies on the [[Sava|Sava river]].\n"

	res := New(plainOpts()).Extract(body)
	if res.Degraded {
		t.Fatal("expected clean parse")
	}

	want := []string{
		"Zagreb is the capital of Croatia.",
		"The city was founded in 1094.",
		"It lies on the Sava river.",
	}
	if len(res.Units) != len(want) {
		t.Fatalf("expected %d units, got %d: %q", len(want), len(res.Units), res.Units)
	}
	for i, w := range want {
		if res.Units[i] != w {
			t.Errorf("unit %d: expected %q, got %q", i, w, res.Units[i])
		}
	}
}

// TestExtractSkipSections tests that boilerplate sections and their bodies
// are dropped, and that a following sibling section resumes output.
func TestExtractSkipSections(t *testing.T) {
	t.Parallel()

	body := "Intro sentence.\n\n" +
		"== References ==\nNot prose.\n\n=== Sources ===\nAlso dropped.\n\n" +
		"== Legacy ==\nKept sentence.\n"

	res := New(plainOpts()).Extract(body)
	joined := strings.Join(res.Units, "\n")
	if strings.Contains(joined, "Not prose") || strings.Contains(joined, "Also dropped") {
		t.Errorf("skip section content leaked: %q", res.Units)
	}
	if !strings.Contains(joined, "Kept sentence.") {
		t.Errorf("sibling section lost: %q", res.Units)
	}
}

// TestExtractOnlySentences tests that the sentence filter applies to list
// items and table cells but never to paragraphs.
func TestExtractOnlySentences(t *testing.T) {
	t.Parallel()

	opts := config.TextOptions{OnlySentences: true, IncludeTables: true}
	body := "A complete sentence.\n\n" +
		"Zagreb is the capital of Croatia\n\n" +
		"* full list entry.\n* bare list entry\n\n" +
		"; bare term\n\n" +
		"{|\n|+ bare caption\n|-\n| kept cell.\n|-\n| bare cell\n|}\n"

	res := New(opts).Extract(body)
	want := []string{
		"A complete sentence.",
		"Zagreb is the capital of Croatia",
		"full list entry.",
		"kept cell.",
	}
	if len(res.Units) != len(want) {
		t.Fatalf("expected %d units, got %d: %q", len(want), len(res.Units), res.Units)
	}
	for i, w := range want {
		if res.Units[i] != w {
			t.Errorf("unit %d: expected %q, got %q", i, w, res.Units[i])
		}
	}
}

// TestExtractMarkdown tests markdown rendering.
func TestExtractMarkdown(t *testing.T) {
	t.Parallel()

	opts := config.TextOptions{
		Markdown:        true,
		IncludeHeadings: true,
		IncludeTables:   true,
	}
	body := "== History ==\n'''Zagreb''' grew ''fast''.\n\n" +
		"* first point\n** sub point\n\n" +
		"See [https://example.org the site].\n"

	res := New(opts).Extract(body)
	joined := strings.Join(res.Units, "\n")

	for _, want := range []string{
		"## History",
		"**Zagreb** grew *fast*.",
		"- first point",
		"  - sub point",
		"[the site](https://example.org)",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in output:\n%s", want, joined)
		}
	}
}

// TestExtractTable tests table rendering in both modes.
func TestExtractTable(t *testing.T) {
	t.Parallel()

	body := "{|\n|+ Cities.\n|-\n! Name !! Population\n|-\n| Zagreb || 790017\n|}\n"

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()

		opts := config.TextOptions{Markdown: true, IncludeTables: true}
		res := New(opts).Extract(body)
		joined := strings.Join(res.Units, "\n")
		for _, want := range []string{
			"**Cities.**",
			"| Name | Population |",
			"| --- | --- |",
			"| Zagreb | 790017 |",
		} {
			if !strings.Contains(joined, want) {
				t.Errorf("expected %q in output:\n%s", want, joined)
			}
		}
	})

	t.Run("excluded", func(t *testing.T) {
		t.Parallel()

		res := New(config.TextOptions{}).Extract(body)
		if len(res.Units) != 0 {
			t.Errorf("expected no units with tables excluded, got %q", res.Units)
		}
	})
}

// TestExtractDegraded tests the fallback for broken markup.
func TestExtractDegraded(t *testing.T) {
	t.Parallel()

	res := New(plainOpts()).Extract("Some text {{never closed and more text")
	if !res.Degraded {
		t.Fatal("expected degraded result")
	}
	if len(res.Units) != 1 || !strings.Contains(res.Units[0], "more text") {
		t.Errorf("expected raw body unit, got %q", res.Units)
	}
}

// TestExtractRedirect tests redirect recognition through the extractor.
func TestExtractRedirect(t *testing.T) {
	t.Parallel()

	res := New(plainOpts()).Extract("#REDIRECT [[Zagreb]]")
	if res.RedirectTarget != "Zagreb" {
		t.Errorf("expected redirect target Zagreb, got %q", res.RedirectTarget)
	}
	if len(res.Units) != 0 {
		t.Errorf("expected no units for a redirect, got %q", res.Units)
	}
}

// TestMapEntities tests named and numeric reference decoding.
func TestMapEntities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"1&nbsp;000", "1 000"},
		{"&#65;&#66;", "AB"},
		{"&#x17D;ivot", "Život"},
		{"broken &#; ref", "broken &#; ref"},
		{"no refs at all", "no refs at all"},
		{"&unknown; stays", "&unknown; stays"},
	}

	for _, tt := range tests {
		if got := MapEntities(tt.in); got != tt.want {
			t.Errorf("MapEntities(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestCollapseWhitespace tests whitespace squeezing.
func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	if got := CollapseWhitespace("  a\t b\n\nc  "); got != "a b c" {
		t.Errorf("unexpected result %q", got)
	}
	if got := CollapseWhitespace("   "); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

// TestTokenize tests word segmentation and filtering.
func TestTokenize(t *testing.T) {
	t.Parallel()

	got := Tokenize("The city, founded 1094, is Zagreb's core.")
	want := []string{"the", "city", "founded", "1094", "is", "zagreb's", "core"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %q", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("token %d: expected %q, got %q", i, w, got[i])
		}
	}
}

// TestDictionary tests frequency accumulation.
func TestDictionary(t *testing.T) {
	t.Parallel()

	d := NewDictionary()
	d.Add("the city and the river")
	d.Add("the mountain")

	if d.Counts()["the"] != 3 {
		t.Errorf("expected the=3, got %d", d.Counts()["the"])
	}
	if d.Distinct() != 5 {
		t.Errorf("expected 5 distinct tokens, got %d", d.Distinct())
	}
	if d.Total() != 7 {
		t.Errorf("expected 7 total tokens, got %d", d.Total())
	}
}
