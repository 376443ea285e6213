package transcript

import "strings"

// maxPhraseWords is the longest filler phrase the tokenizer looks ahead for.
const maxPhraseWords = 3

// FillerSet is a normalized lookup set of filler words and phrases.
type FillerSet map[string]struct{}

// NewFillerSet builds a FillerSet from analysis entries. Entries are
// lowercased and stripped of punctuation word by word.
func NewFillerSet(fillers []FillerEntry) FillerSet {
	n := newNormalizer(false)
	set := make(FillerSet, len(fillers))
	for _, f := range fillers {
		if p := n.phrase(f.Word); p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}

// Has reports whether the normalized phrase is a filler.
func (s FillerSet) Has(phrase string) bool {
	_, ok := s[phrase]
	return ok
}

// Tokenize splits raw into tokens, marking filler words and phrases.
// Whitespace runs become their own tokens, so joining the token texts
// reproduces raw. Multi-word fillers are matched longest first and emitted
// as a single token spanning their interior whitespace.
func Tokenize(raw string, fillers []FillerEntry) []Token {
	return TokenizeSet(raw, NewFillerSet(fillers))
}

// TokenizeSet is Tokenize with a prebuilt filler set.
func TokenizeSet(raw string, set FillerSet) []Token {
	parts := splitKeepSpace(raw)
	if len(parts) == 0 {
		return nil
	}

	n := newNormalizer(false)
	keys := make([]string, len(parts))
	for i, p := range parts {
		if !isSpace(p) {
			keys[i] = n.word(p)
		}
	}

	tokens := make([]Token, 0, len(parts))
	for i := 0; i < len(parts); {
		if isSpace(parts[i]) {
			tokens = append(tokens, Token{Text: parts[i]})
			i++
			continue
		}

		end := matchPhrase(parts, keys, i, set)
		if end > 0 {
			tokens = append(tokens, Token{
				Text:     strings.Join(parts[i:end], ""),
				IsFiller: true,
			})
			i = end
			continue
		}

		tokens = append(tokens, Token{Text: parts[i], IsFiller: set.Has(keys[i])})
		i++
	}
	return tokens
}

// matchPhrase tries phrases of maxPhraseWords down to two words starting at
// parts[start]. It returns the exclusive end index of the longest match, or
// 0 when no multi-word filler starts there.
func matchPhrase(parts, keys []string, start int, set FillerSet) int {
	for size := maxPhraseWords; size >= 2; size-- {
		words := make([]string, 0, size)
		j := start
		for len(words) < size && j < len(parts) {
			if !isSpace(parts[j]) {
				words = append(words, keys[j])
			}
			j++
		}
		if len(words) < size {
			continue
		}
		if set.Has(strings.Join(words, " ")) {
			return j
		}
	}
	return 0
}

// Tokenizer memoizes the most recent tokenization. Re-rendering the same
// transcript with the same filler list returns the cached tokens.
type Tokenizer struct {
	raw     string
	fillers []FillerEntry
	tokens  []Token
	valid   bool
}

// Tokens returns the tokens for (raw, fillers), recomputing only when either
// input changed since the previous call.
func (t *Tokenizer) Tokens(raw string, fillers []FillerEntry) []Token {
	if t.valid && t.raw == raw && sameFillers(t.fillers, fillers) {
		return t.tokens
	}
	t.raw = raw
	t.fillers = append(t.fillers[:0], fillers...)
	t.tokens = Tokenize(raw, fillers)
	t.valid = true
	return t.tokens
}

func sameFillers(a, b []FillerEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
