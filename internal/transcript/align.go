package transcript

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// AlignWords is an order-aware alternative to DiffWords. It encodes every
// normalized word as one rune and runs a sequence diff over the two rune
// strings, so a raw word only counts as kept when it lines up with a cleaned
// word in order. Results differ from DiffWords when words repeat out of
// order; callers opt into it explicitly.
func AlignWords(raw, cleaned string) []WordDiff {
	rawWords := strings.Fields(raw)
	if len(rawWords) == 0 {
		return nil
	}

	n := newNormalizer(true)
	enc := newWordEncoder()

	diffs := make([]WordDiff, len(rawWords))
	var rawRunes []rune
	var positions []int // index into rawWords for each rune of rawRunes
	for i, w := range rawWords {
		diffs[i].Text = w
		key := n.word(w)
		if key == "" {
			continue
		}
		rawRunes = append(rawRunes, enc.encode(key))
		positions = append(positions, i)
	}

	var cleanedRunes []rune
	for _, w := range strings.Fields(cleaned) {
		if key := n.word(w); key != "" {
			cleanedRunes = append(cleanedRunes, enc.encode(key))
		}
	}

	dmp := diffmatchpatch.New()
	pos := 0
	for _, d := range dmp.DiffMainRunes(rawRunes, cleanedRunes, false) {
		count := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += count
		case diffmatchpatch.DiffDelete:
			for k := 0; k < count; k++ {
				diffs[positions[pos+k]].Removed = true
			}
			pos += count
		case diffmatchpatch.DiffInsert:
			// words only present in cleaned
		}
	}
	return diffs
}

// wordEncoder maps each distinct word to a private rune so a word sequence
// can be diffed as a string.
type wordEncoder struct {
	codes map[string]rune
	next  rune
}

func newWordEncoder() *wordEncoder {
	return &wordEncoder{codes: make(map[string]rune), next: 0x100}
}

func (e *wordEncoder) encode(word string) rune {
	if r, ok := e.codes[word]; ok {
		return r
	}
	r := e.next
	e.next++
	if e.next == 0xD800 {
		// skip the surrogate range, those are not valid runes
		e.next = 0xE000
	}
	e.codes[word] = r
	return r
}
