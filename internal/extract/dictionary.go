package extract

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// Tokenize splits text into lowercase word tokens using Unicode word
// boundaries. Punctuation-only and whitespace segments are dropped; a token
// must contain at least one letter or digit.
func Tokenize(text string) []string {
	var tokens []string
	iter := words.FromString(text)
	for iter.Next() {
		tok := iter.Value()
		if !wordlike(tok) {
			continue
		}
		tokens = append(tokens, strings.ToLower(tok))
	}
	return tokens
}

func wordlike(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Dictionary accumulates word frequencies. It is owned by a single goroutine;
// the pipeline funnels all text through one consumer, so no locking happens
// on the hot path.
type Dictionary struct {
	counts map[string]int64
	total  int64
}

// NewDictionary creates an empty Dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{counts: make(map[string]int64)}
}

// Add tokenizes text and counts its words.
func (d *Dictionary) Add(text string) {
	for _, tok := range Tokenize(text) {
		d.counts[tok]++
		d.total++
	}
}

// Counts exposes the frequency table. The map is live; callers must not
// mutate it while the dictionary is still being fed.
func (d *Dictionary) Counts() map[string]int64 {
	return d.counts
}

// Distinct returns the number of distinct tokens seen.
func (d *Dictionary) Distinct() int {
	return len(d.counts)
}

// Total returns the total token count, duplicates included.
func (d *Dictionary) Total() int64 {
	return d.total
}
