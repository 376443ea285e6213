package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

// blockingSynth blocks the first call until its context is canceled and
// answers every later call immediately.
type blockingSynth struct {
	started chan struct{}
	calls   int
}

func (b *blockingSynth) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	b.calls++
	if b.calls == 1 {
		close(b.started)
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "/audio/" + text + ".mp3", nil
}

type stubSynth struct {
	url string
	err error
}

func (s stubSynth) Synthesize(context.Context, string, string) (string, error) {
	return s.url, s.err
}

func TestRegenerate_NothingToSubmit(t *testing.T) {
	r := NewRegenerator(stubSynth{url: "/audio/x.mp3"})
	tests := []struct {
		name, text, voice string
	}{
		{"empty text", "", "v"},
		{"blank text", "  \n ", "v"},
		{"no voice", "hello", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Regenerate(context.Background(), tt.text, tt.voice)
			if !errors.Is(err, ErrNothingToSubmit) {
				t.Errorf("err = %v, want ErrNothingToSubmit", err)
			}
		})
	}
	if r.AudioURL() != "" {
		t.Error("rejected request committed a URL")
	}
}

func TestRegenerate_Commits(t *testing.T) {
	r := NewRegenerator(stubSynth{url: "/audio/x.mp3"})
	url, err := r.Regenerate(context.Background(), "  hello world ", "v")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if url != "/audio/x.mp3" || r.AudioURL() != url {
		t.Errorf("url = %q, committed = %q", url, r.AudioURL())
	}
	if r.Generating() {
		t.Error("Generating after completion")
	}
}

func TestRegenerate_ErrorKeepsPreviousURL(t *testing.T) {
	r := NewRegenerator(stubSynth{url: "/audio/first.mp3"})
	if _, err := r.Regenerate(context.Background(), "first", "v"); err != nil {
		t.Fatal(err)
	}

	r.svc = stubSynth{err: errors.New("TTS failed (500)")}
	if _, err := r.Regenerate(context.Background(), "second", "v"); err == nil {
		t.Fatal("expected error")
	}
	if got := r.AudioURL(); got != "/audio/first.mp3" {
		t.Errorf("AudioURL = %q, want previous URL", got)
	}
}

func TestRegenerate_NewerSupersedesOlder(t *testing.T) {
	synth := &blockingSynth{started: make(chan struct{})}
	r := NewRegenerator(synth)

	type outcome struct {
		url string
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		url, err := r.Regenerate(context.Background(), "old", "v")
		first <- outcome{url, err}
	}()

	select {
	case <-synth.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never started")
	}
	if !r.Generating() {
		t.Error("Generating = false while a request is in flight")
	}

	url, err := r.Regenerate(context.Background(), "new", "v")
	if err != nil {
		t.Fatalf("second Regenerate: %v", err)
	}
	if url != "/audio/new.mp3" {
		t.Errorf("url = %q", url)
	}

	select {
	case got := <-first:
		if !errors.Is(got.err, ErrSuperseded) {
			t.Errorf("first err = %v, want ErrSuperseded", got.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first request was not canceled")
	}

	if got := r.AudioURL(); got != "/audio/new.mp3" {
		t.Errorf("AudioURL = %q, want newest", got)
	}
	if r.Generating() {
		t.Error("Generating after all requests finished")
	}
}

func TestRegenerator_Reset(t *testing.T) {
	r := NewRegenerator(stubSynth{url: "/audio/x.mp3"})
	if _, err := r.Regenerate(context.Background(), "hi", "v"); err != nil {
		t.Fatal(err)
	}
	r.Reset()
	if r.AudioURL() != "" {
		t.Errorf("AudioURL after Reset = %q", r.AudioURL())
	}
}
