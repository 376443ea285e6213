package transcript

import "testing"

func TestAlignWords_MatchesDiffOnSimpleRemovals(t *testing.T) {
	raw := "I, uh, think um this works"
	cleaned := "I think this works"

	got := removedWords(AlignWords(raw, cleaned))
	want := []string{"uh,", "um"}
	if len(got) != len(want) {
		t.Fatalf("removed = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("removed[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAlignWords_ReorderedRepeats(t *testing.T) {
	raw := "a b a"
	cleaned := "a a b"

	if n := RemovedCount(DiffWords(raw, cleaned)); n != 0 {
		t.Errorf("DiffWords removed %d, want 0", n)
	}
	if n := RemovedCount(AlignWords(raw, cleaned)); n != 1 {
		t.Errorf("AlignWords removed %d, want 1", n)
	}
}

func TestAlignWords_InsertionsIgnored(t *testing.T) {
	diffs := AlignWords("hello world", "hello brave new world")
	if n := RemovedCount(diffs); n != 0 {
		t.Errorf("removed %d words, want 0", n)
	}
}

func TestAlignWords_PunctuationKept(t *testing.T) {
	diffs := AlignWords("wait — um ok", "ok")
	got := removedWords(diffs)
	want := []string{"wait", "um"}
	if len(got) != len(want) {
		t.Fatalf("removed = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("removed[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAlignWords_Empty(t *testing.T) {
	if diffs := AlignWords("", "hello"); len(diffs) != 0 {
		t.Errorf("expected no diffs, got %d", len(diffs))
	}
	diffs := AlignWords("um uh", "")
	if RemovedCount(diffs) != 2 {
		t.Errorf("expected both words removed, got %d", RemovedCount(diffs))
	}
}

func TestWordEncoder_SkipsSurrogates(t *testing.T) {
	e := newWordEncoder()
	e.next = 0xD7FF
	first := e.encode("x")
	second := e.encode("y")
	if first != 0xD7FF {
		t.Errorf("first = %U, want U+D7FF", first)
	}
	if second != 0xE000 {
		t.Errorf("second = %U, want U+E000", second)
	}
	if again := e.encode("x"); again != first {
		t.Errorf("encode is not stable: %U != %U", again, first)
	}
}
