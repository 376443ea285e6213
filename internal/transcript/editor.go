package transcript

import (
	"errors"
	"strings"
)

// ErrIndexOutOfRange is returned by Toggle for an index with no word.
var ErrIndexOutOfRange = errors.New("word index out of range")

// Editor holds one edit session over a cleaned transcript. The user can
// drop or restore single words, or replace the text outright. While the
// session is word-driven the text always equals the kept words joined by
// spaces. Typing text switches to manual mode, after which word toggles no
// longer touch the text until Resync realigns the mask with it.
//
// An Editor is owned by a single caller and is not safe for concurrent use.
type Editor struct {
	words []WordToken
	kept  []bool
	text  string
	mode  SyncMode
}

// NewEditor starts a word-driven session over initial with every word kept.
func NewEditor(initial string) *Editor {
	e := &Editor{}
	e.Reset(initial)
	return e
}

// Reset discards the session and starts over from initial.
func (e *Editor) Reset(initial string) {
	fields := strings.Fields(initial)
	e.words = make([]WordToken, len(fields))
	e.kept = make([]bool, len(fields))
	for i, f := range fields {
		e.words[i] = WordToken{ID: i, Text: f}
		e.kept[i] = true
	}
	e.text = initial
	e.mode = WordDriven
}

// Toggle flips whether word i is kept. In word-driven mode the text is
// rebuilt; in manual mode only the mask changes.
func (e *Editor) Toggle(i int) error {
	if i < 0 || i >= len(e.kept) {
		return ErrIndexOutOfRange
	}
	e.kept[i] = !e.kept[i]
	if e.mode == WordDriven {
		e.text = e.joinKept()
	}
	return nil
}

// SetText replaces the text verbatim and switches to manual mode.
func (e *Editor) SetText(text string) {
	e.text = text
	e.mode = Manual
}

// Resync recomputes the kept mask from the current text and returns to
// word-driven mode. A word is kept when its normalized form occurs anywhere
// in the text; repeats are not counted. Words that are pure punctuation are
// kept when the same token occurs in the text. The text itself is left as
// typed.
func (e *Editor) Resync() {
	n := newNormalizer(true)
	present := make(map[string]struct{})
	surface := make(map[string]struct{})
	for _, f := range strings.Fields(e.text) {
		surface[f] = struct{}{}
		if key := n.word(f); key != "" {
			present[key] = struct{}{}
		}
	}

	for i, w := range e.words {
		key := n.word(w.Text)
		if key == "" {
			_, e.kept[i] = surface[w.Text]
			continue
		}
		_, e.kept[i] = present[key]
	}
	e.mode = WordDriven
}

// Words returns the session's word tokens.
func (e *Editor) Words() []WordToken {
	return append([]WordToken(nil), e.words...)
}

// Kept returns a copy of the kept mask.
func (e *Editor) Kept() []bool {
	return append([]bool(nil), e.kept...)
}

// Removed returns the words currently toggled off, in order.
func (e *Editor) Removed() []WordToken {
	var out []WordToken
	for i, w := range e.words {
		if !e.kept[i] {
			out = append(out, w)
		}
	}
	return out
}

// Text returns the current text buffer.
func (e *Editor) Text() string { return e.text }

// Mode returns the current sync mode.
func (e *Editor) Mode() SyncMode { return e.mode }

// Trimmed returns the text as it would be submitted for regeneration.
func (e *Editor) Trimmed() string { return strings.TrimSpace(e.text) }

func (e *Editor) joinKept() string {
	parts := make([]string, 0, len(e.words))
	for i, w := range e.words {
		if e.kept[i] {
			parts = append(parts, w.Text)
		}
	}
	return strings.Join(parts, " ")
}
