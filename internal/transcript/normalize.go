package transcript

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// apostrophes survive word normalization so "don't" and "dont" stay distinct.
var apostrophes = map[rune]struct{}{
	'\'':     {},
	'\u2019': {}, // ’
}

// normalizer lowercases words and strips punctuation for comparison.
// A cases.Caser is stateful, so each pure entry point builds its own.
type normalizer struct {
	lower          cases.Caser
	keepApostrophe bool
}

func newNormalizer(keepApostrophe bool) *normalizer {
	return &normalizer{
		lower:          cases.Lower(language.Und),
		keepApostrophe: keepApostrophe,
	}
}

// word returns the lowercased letters of w. The result may be empty.
func (n *normalizer) word(w string) string {
	var b strings.Builder
	b.Grow(len(w))
	for _, r := range w {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
			continue
		}
		if n.keepApostrophe {
			if _, ok := apostrophes[r]; ok {
				b.WriteRune(r)
			}
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return n.lower.String(b.String())
}

// phrase normalizes every word of p and joins them with single spaces.
// Words that normalize to nothing are dropped.
func (n *normalizer) phrase(p string) string {
	fields := strings.Fields(p)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := n.word(f); w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, " ")
}

// NormalizeWord lowercases w and strips everything except letters and
// apostrophes. It is the comparison key used by DiffWords and Editor.Resync.
func NormalizeWord(w string) string {
	return newNormalizer(true).word(w)
}

// isSpace reports whether s is a non-empty run of whitespace.
func isSpace(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// splitKeepSpace splits s into alternating word and whitespace runs.
// Joining the result reproduces s.
func splitKeepSpace(s string) []string {
	var parts []string
	start := 0
	inSpace := false
	for i, r := range s {
		sp := unicode.IsSpace(r)
		if i == 0 {
			inSpace = sp
			continue
		}
		if sp != inSpace {
			parts = append(parts, s[start:i])
			start = i
			inSpace = sp
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}
