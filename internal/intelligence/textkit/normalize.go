// Package textkit provides the text-normalisation, similarity-scoring, and
// entity-extraction primitives every higher analysis component builds on.
// All functions are pure and allocation-light; the package keeps no state.
package textkit

import (
	"strings"
	"unicode"
)

// Normalize lowercases text, strips every non-alphanumeric rune except
// whitespace, collapses runs of whitespace, and splits the result into a
// token set.  Duplicates collapse: comparisons downstream are set-based, not
// multiset-based.  Empty or punctuation-only input yields an empty set.
func Normalize(text string) map[string]struct{} {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			// Punctuation becomes a separator so "510(k)" splits into
			// "510" and "k" rather than fusing.
			b.WriteByte(' ')
		}
	}

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(b.String()) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

// NormalizeString returns the canonical single-string form of text: the
// normalised tokens rejoined with single spaces in original first-seen order.
// Useful for building deterministic grouping keys.
func NormalizeString(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
