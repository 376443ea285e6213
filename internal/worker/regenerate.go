package worker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

var (
	// ErrSuperseded is returned by a regeneration that a newer one replaced.
	ErrSuperseded = errors.New("regeneration superseded by a newer request")
	// ErrNothingToSubmit is returned when the text or voice id is empty.
	ErrNothingToSubmit = errors.New("nothing to regenerate")
)

// Synthesizer renders text in a cloned voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) (string, error)
}

// Regenerator keeps at most one text-to-speech request in flight. Starting a
// new request cancels the previous one, and only the latest request may
// update the committed audio URL.
type Regenerator struct {
	svc Synthesizer

	mu         sync.Mutex
	token      uint64
	cancel     context.CancelFunc
	generating bool
	audioURL   string
}

// NewRegenerator returns a Regenerator that calls svc.
func NewRegenerator(svc Synthesizer) *Regenerator {
	return &Regenerator{svc: svc}
}

// Regenerate synthesizes text and commits the resulting audio URL.
func (r *Regenerator) Regenerate(ctx context.Context, text, voiceID string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.TrimSpace(voiceID) == "" {
		return "", ErrNothingToSubmit
	}

	r.mu.Lock()
	r.token++
	token := r.token
	if r.cancel != nil {
		r.cancel()
	}
	rctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.generating = true
	r.mu.Unlock()

	url, err := r.svc.Synthesize(rctx, text, voiceID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if token != r.token {
		cancel()
		slog.Debug("dropping superseded regeneration", "token", token, "latest", r.token)
		return "", ErrSuperseded
	}
	cancel()
	r.cancel = nil
	r.generating = false
	if err != nil {
		return "", err
	}
	r.audioURL = url
	return url, nil
}

// Generating reports whether a request is in flight.
func (r *Regenerator) Generating() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generating
}

// AudioURL returns the most recently committed audio URL.
func (r *Regenerator) AudioURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.audioURL
}

// Reset drops the committed URL and cancels any request in flight.
func (r *Regenerator) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.generating = false
	r.audioURL = ""
}
