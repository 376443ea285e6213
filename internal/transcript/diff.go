package transcript

import "strings"

// DiffWords reports, for every whitespace-delimited word of raw in order,
// whether cleanup removed it.
//
// The match is a greedy multiset subtraction on normalized words, not a
// sequence alignment: a raw word is kept while the cleaned text still has an
// unmatched occurrence of the same normalized word. Words that normalize to
// nothing (bare punctuation) are always kept. Words present only in cleaned
// are ignored; insertions and substitutions are never reported.
func DiffWords(raw, cleaned string) []WordDiff {
	rawWords := strings.Fields(raw)
	if len(rawWords) == 0 {
		return nil
	}

	n := newNormalizer(true)
	remaining := make(map[string]int)
	for _, w := range strings.Fields(cleaned) {
		if key := n.word(w); key != "" {
			remaining[key]++
		}
	}

	diffs := make([]WordDiff, len(rawWords))
	for i, w := range rawWords {
		diffs[i].Text = w

		key := n.word(w)
		if key == "" {
			continue
		}
		if remaining[key] > 0 {
			remaining[key]--
			continue
		}
		diffs[i].Removed = true
	}
	return diffs
}

// RemovedCount returns how many words in diffs were removed.
func RemovedCount(diffs []WordDiff) int {
	count := 0
	for _, d := range diffs {
		if d.Removed {
			count++
		}
	}
	return count
}
