package transcript

import (
	"io"
	"strings"
	"unicode/utf8"
)

const (
	ansiStrike = "\x1b[9;31m"
	ansiReset  = "\x1b[0m"
)

// RenderOptions controls how tokens are written.
type RenderOptions struct {
	// Color wraps fillers in ANSI strikethrough. Without it fillers are
	// written as [-text-].
	Color bool
	// Width wraps lines at whitespace before a word that would overflow.
	// Zero disables wrapping.
	Width int
}

// Render writes tokens to w with fillers marked. Wrapping only replaces
// whitespace tokens with a newline; token texts are never split.
func Render(w io.Writer, tokens []Token, opts RenderOptions) error {
	var b strings.Builder
	col := 0
	for i, tok := range tokens {
		if isSpace(tok.Text) {
			if nl := strings.LastIndexByte(tok.Text, '\n'); nl >= 0 {
				b.WriteString(tok.Text)
				col = utf8.RuneCountInString(tok.Text[nl+1:])
				continue
			}
			next := nextWordWidth(tokens, i+1, opts)
			if opts.Width > 0 && col > 0 && col+utf8.RuneCountInString(tok.Text)+next > opts.Width {
				b.WriteByte('\n')
				col = 0
				continue
			}
			b.WriteString(tok.Text)
			col += utf8.RuneCountInString(tok.Text)
			continue
		}

		text := tok.Text
		switch {
		case tok.IsFiller && opts.Color:
			b.WriteString(ansiStrike + text + ansiReset)
		case tok.IsFiller:
			b.WriteString("[-" + text + "-]")
		default:
			b.WriteString(text)
		}
		col += displayWidth(tok, opts)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderDiff writes word diffs to w with removed words marked, one space
// between words.
func RenderDiff(w io.Writer, diffs []WordDiff, opts RenderOptions) error {
	tokens := make([]Token, 0, len(diffs)*2)
	for i, d := range diffs {
		if i > 0 {
			tokens = append(tokens, Token{Text: " "})
		}
		tokens = append(tokens, Token{Text: d.Text, IsFiller: d.Removed})
	}
	return Render(w, tokens, opts)
}

func nextWordWidth(tokens []Token, i int, opts RenderOptions) int {
	if i >= len(tokens) || isSpace(tokens[i].Text) {
		return 0
	}
	return displayWidth(tokens[i], opts)
}

func displayWidth(tok Token, opts RenderOptions) int {
	n := utf8.RuneCountInString(tok.Text)
	if tok.IsFiller && !opts.Color {
		n += 4
	}
	return n
}
