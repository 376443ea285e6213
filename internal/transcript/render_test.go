package transcript

import (
	"strings"
	"testing"
)

func TestRender_PlainMarkers(t *testing.T) {
	var sb strings.Builder
	tokens := Tokenize("Um, hello you know world", []FillerEntry{{Word: "um"}, {Word: "you know"}})

	if err := Render(&sb, tokens, RenderOptions{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "[-Um,-] hello [-you know-] world"
	if sb.String() != want {
		t.Errorf("Render = %q, want %q", sb.String(), want)
	}
}

func TestRender_Color(t *testing.T) {
	var sb strings.Builder
	tokens := Tokenize("um ok", []FillerEntry{{Word: "um"}})

	if err := Render(&sb, tokens, RenderOptions{Color: true}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(sb.String(), ansiStrike+"um"+ansiReset) {
		t.Errorf("expected ANSI strikethrough, got %q", sb.String())
	}
}

func TestRender_Wrap(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		width int
		want  string
	}{
		{"No wrap", "aaa bbb ccc", 0, "aaa bbb ccc"},
		{"Wraps before overflow", "aaa bbb ccc", 7, "aaa bbb\nccc"},
		{"Existing newline resets column", "aaa\nbbb ccc", 7, "aaa\nbbb ccc"},
		{"Long word overflows", "aaaaaaaaaa b", 4, "aaaaaaaaaa\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			if err := Render(&sb, Tokenize(tt.raw, nil), RenderOptions{Width: tt.width}); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if sb.String() != tt.want {
				t.Errorf("Render = %q, want %q", sb.String(), tt.want)
			}
		})
	}
}

func TestRenderDiff(t *testing.T) {
	var sb strings.Builder
	diffs := DiffWords("I, uh, think", "I think")

	if err := RenderDiff(&sb, diffs, RenderOptions{}); err != nil {
		t.Fatalf("RenderDiff: %v", err)
	}
	if sb.String() != "I, [-uh,-] think" {
		t.Errorf("RenderDiff = %q", sb.String())
	}
}
