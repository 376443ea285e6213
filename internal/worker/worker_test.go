package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"voiceup/internal/api"
	"voiceup/internal/transcript"
	"voiceup/internal/voices"
)

type fakeService struct {
	mu        sync.Mutex
	cloned    []string
	analyzed  []api.AnalyzeRequest
	failFirst map[string]error // base name -> error returned on the first attempt
	failAll   map[string]error
	attempts  map[string]int
	inFlight  atomic.Int32
	peak      atomic.Int32
}

func (f *fakeService) Clone(_ context.Context, samplePath string, _ api.ProgressFunc) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cloned = append(f.cloned, samplePath)
	return "voice-123", nil
}

func (f *fakeService) Analyze(_ context.Context, r api.AnalyzeRequest) (*transcript.AnalyzeResult, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	name := filepath.Base(r.AudioPath)
	f.mu.Lock()
	f.analyzed = append(f.analyzed, r)
	if f.attempts == nil {
		f.attempts = make(map[string]int)
	}
	f.attempts[name]++
	attempt := f.attempts[name]
	f.mu.Unlock()

	if err := f.failAll[name]; err != nil {
		return nil, err
	}
	if err := f.failFirst[name]; err != nil && attempt == 1 {
		return nil, err
	}
	return &transcript.AnalyzeResult{
		RawTranscript:     "um " + name,
		CleanedTranscript: name,
		Fillers:           []transcript.FillerEntry{{Word: "um", Count: 1}},
		TotalFillers:      1,
		AudioURL:          "/audio/" + strings.TrimSuffix(name, filepath.Ext(name)) + ".mp3",
	}, nil
}

func (f *fakeService) Download(_ context.Context, rel, dst string) error {
	return os.WriteFile(dst, []byte("audio:"+rel), 0644)
}

func writeInputs(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
		if err := os.WriteFile(paths[i], make([]byte, 2048), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func TestRun_RequiresVoice(t *testing.T) {
	inputs := writeInputs(t, "a.webm")
	_, err := Run(context.Background(), &fakeService{}, Options{Inputs: inputs})
	if err == nil {
		t.Fatal("expected error without voice")
	}
}

func TestRun_NoInputs(t *testing.T) {
	if _, err := Run(context.Background(), &fakeService{}, Options{VoiceID: "v"}); err == nil {
		t.Fatal("expected error without inputs")
	}
}

func TestRun_ClonesAndSavesVoice(t *testing.T) {
	inputs := writeInputs(t, "sample.webm", "speech.webm")
	store := voices.NewStore(filepath.Join(t.TempDir(), "voices.json"))
	svc := &fakeService{}

	rep, err := Run(context.Background(), svc, Options{
		Inputs:     inputs[1:],
		SamplePath: inputs[0],
		Audience:   "Investors",
		Style:      "Add Humor",
		Voices:     store,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.VoiceID != "voice-123" {
		t.Errorf("VoiceID = %q", rep.VoiceID)
	}
	if len(svc.cloned) != 1 || svc.cloned[0] != inputs[0] {
		t.Errorf("cloned = %v", svc.cloned)
	}
	if len(svc.analyzed) != 1 {
		t.Fatalf("analyzed %d files, want 1", len(svc.analyzed))
	}
	req := svc.analyzed[0]
	if req.VoiceID != "voice-123" || req.Audience != "Investors" || req.Style != "Add Humor" {
		t.Errorf("request = %+v", req)
	}

	saved := store.List()
	if len(saved) != 1 || saved[0].VoiceID != "voice-123" {
		t.Errorf("saved voices = %+v", saved)
	}
}

func TestRun_ConcurrentKeepsInputOrder(t *testing.T) {
	inputs := writeInputs(t, "1.webm", "2.webm", "3.webm", "4.webm", "5.webm")
	svc := &fakeService{}

	rep, err := Run(context.Background(), svc, Options{
		Inputs:        inputs,
		VoiceID:       "v",
		MaxConcurrent: 2,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Results) != len(inputs) {
		t.Fatalf("got %d results, want %d", len(rep.Results), len(inputs))
	}
	for i, r := range rep.Results {
		if r.Input != inputs[i] {
			t.Errorf("result %d input = %s, want %s", i, r.Input, inputs[i])
		}
		want := filepath.Base(inputs[i])
		if r.Analysis.CleanedTranscript != want {
			t.Errorf("result %d cleaned = %q, want %q", i, r.Analysis.CleanedTranscript, want)
		}
	}
	if peak := svc.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestRun_SaveJSONAndDownload(t *testing.T) {
	inputs := writeInputs(t, "talk.webm")
	svc := &fakeService{}

	rep, err := Run(context.Background(), svc, Options{
		Inputs:   inputs,
		VoiceID:  "v",
		SaveJSON: true,
		Download: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	res := rep.Results[0]

	wantJSON := strings.TrimSuffix(inputs[0], ".webm") + ".voiceup.json"
	if res.JSONPath != wantJSON {
		t.Errorf("JSONPath = %q, want %q", res.JSONPath, wantJSON)
	}
	loaded, err := LoadJSON(res.JSONPath)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if loaded.CleanedTranscript != "talk.webm" || loaded.TotalFillers != 1 {
		t.Errorf("loaded = %+v", loaded)
	}

	wantAudio := strings.TrimSuffix(inputs[0], ".webm") + ".cleaned.mp3"
	if res.AudioPath != wantAudio {
		t.Errorf("AudioPath = %q, want %q", res.AudioPath, wantAudio)
	}
	data, err := os.ReadFile(wantAudio)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "audio:/audio/talk.mp3" {
		t.Errorf("audio = %q", data)
	}
}

func TestRun_ClientErrorIsNotRetried(t *testing.T) {
	inputs := writeInputs(t, "bad.webm")
	svc := &fakeService{failAll: map[string]error{
		"bad.webm": &api.Error{Op: "Analysis", Status: 400, Detail: "Audio too short"},
	}}

	_, err := Run(context.Background(), svc, Options{Inputs: inputs, VoiceID: "v", MaxRetries: 3})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Detail != "Audio too short" {
		t.Fatalf("err = %v, want api error", err)
	}
	if got := svc.attempts["bad.webm"]; got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestFallbackToSequential_SkipsCompleted(t *testing.T) {
	inputs := writeInputs(t, "a.webm", "b.webm", "c.webm")
	svc := &fakeService{}
	opts := Options{Inputs: inputs, VoiceID: "v", MaxRetries: 1}

	done := []indexedResult{{Index: 1, Result: Result{Input: inputs[1]}}}
	results, err := fallbackToSequential(context.Background(), svc, opts, done)
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Input != inputs[i] {
			t.Errorf("result %d input = %s, want %s", i, r.Input, inputs[i])
		}
	}
	if svc.attempts["b.webm"] != 0 {
		t.Error("completed input was analyzed again")
	}
	if svc.attempts["a.webm"] != 1 || svc.attempts["c.webm"] != 1 {
		t.Errorf("attempts = %v", svc.attempts)
	}
}

func TestProcessWithRetry_RetriesTransientError(t *testing.T) {
	inputs := writeInputs(t, "flaky.webm")
	svc := &fakeService{failFirst: map[string]error{
		"flaky.webm": &api.Error{Status: 503},
	}}
	opts := Options{VoiceID: "v", MaxRetries: 2}

	res, err := processWithRetry(context.Background(), svc, inputs[0], opts)
	if err != nil {
		t.Fatalf("processWithRetry: %v", err)
	}
	if res.Analysis == nil {
		t.Fatal("no analysis")
	}
	if got := svc.attempts["flaky.webm"]; got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestAudioExt(t *testing.T) {
	tests := []struct {
		url, want string
	}{
		{"/audio/abc.mp3", ".mp3"},
		{"/audio/abc.wav?x=1", ".wav"},
		{"/audio/abc", ".mp3"},
		{"", ".mp3"},
	}
	for _, tt := range tests {
		if got := audioExt(tt.url); got != tt.want {
			t.Errorf("audioExt(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &api.Error{Status: 502}, true},
		{"rate limited", &api.Error{Status: 429}, true},
		{"bad request", &api.Error{Status: 400}, false},
		{"too short", api.ErrSampleTooShort, false},
		{"canceled", context.Canceled, false},
		{"network", errors.New("dial tcp: refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryable(tt.err); got != tt.want {
				t.Errorf("retryable = %v, want %v", got, tt.want)
			}
		})
	}
}
