package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"

	"voiceup/internal/api"
	"voiceup/internal/ffmpeg"
	"voiceup/internal/transcript"
	"voiceup/internal/voices"

	"github.com/google/uuid"
)

// Service is the part of the api client the batch runner needs.
type Service interface {
	Clone(ctx context.Context, samplePath string, progress api.ProgressFunc) (string, error)
	Analyze(ctx context.Context, r api.AnalyzeRequest) (*transcript.AnalyzeResult, error)
	Download(ctx context.Context, rel, dst string) error
}

// Options configures a batch run.
type Options struct {
	Inputs     []string
	SamplePath string // cloned first when set; its voice is used for every input
	VoiceID    string
	Audience   string
	Style      string

	NoAsync         bool
	MaxConcurrent   int
	MaxRetries      int
	RateLimitPerMin int

	SaveJSON bool
	Download bool

	// Voices receives a freshly cloned voice. Nil skips saving.
	Voices *voices.Store
}

// Result is the outcome for one input file.
type Result struct {
	Input     string
	Analysis  *transcript.AnalyzeResult
	JSONPath  string
	AudioPath string
}

// Report is what a batch run produced.
type Report struct {
	VoiceID string
	Results []Result // in input order
}

// Run clones a voice when asked, then analyzes every input with it.
func Run(ctx context.Context, svc Service, opts Options) (*Report, error) {
	if len(opts.Inputs) == 0 {
		return nil, errors.New("no input files")
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}

	voiceID := opts.VoiceID
	if opts.SamplePath != "" {
		id, err := cloneVoice(ctx, svc, opts)
		if err != nil {
			return nil, err
		}
		voiceID = id
	}
	if voiceID == "" {
		return nil, errors.New("a voice id or a voice sample is required")
	}
	opts.VoiceID = voiceID

	var (
		results []Result
		err     error
	)
	if !opts.NoAsync && len(opts.Inputs) > 1 && opts.MaxConcurrent > 1 {
		results, err = processConcurrent(ctx, svc, opts)
	} else {
		results, err = processSequential(ctx, svc, opts)
	}
	if err != nil {
		return nil, err
	}
	return &Report{VoiceID: voiceID, Results: results}, nil
}

func cloneVoice(ctx context.Context, svc Service, opts Options) (string, error) {
	ffmpeg.LogMediaInfo(ctx, opts.SamplePath)
	id, err := svc.Clone(ctx, opts.SamplePath, uploadProgress("sample", opts.SamplePath))
	if err != nil {
		return "", fmt.Errorf("clone voice: %w", err)
	}
	slog.Info("voice cloned", "voice_id", id)

	if opts.Voices != nil {
		if _, err := opts.Voices.Add(id); err != nil {
			slog.Warn("failed to save voice", "voice_id", id, "err", err)
		}
	}
	return id, nil
}

// processOne analyzes a single input and writes its outputs.
func processOne(ctx context.Context, svc Service, input string, opts Options) (Result, error) {
	res := Result{Input: input}

	duration := ffmpeg.Duration(ctx, input)

	workingPath := input
	ext := filepath.Ext(input)
	if ffmpeg.IsVideoExtension(ext) && ffmpeg.Available() {
		tmp := filepath.Join(os.TempDir(), "voiceup-"+uuid.NewString()+".m4a")
		slog.Info("extracting audio from video", "file", filepath.Base(input))
		if err := ffmpeg.ExtractAudio(ctx, input, tmp); err != nil {
			return res, fmt.Errorf("extract audio: %w", err)
		}
		defer os.Remove(tmp)
		workingPath = tmp
	}

	analysis, err := svc.Analyze(ctx, api.AnalyzeRequest{
		AudioPath: workingPath,
		VoiceID:   opts.VoiceID,
		Audience:  opts.Audience,
		Style:     opts.Style,
		Duration:  duration,
		Progress:  uploadProgress("speech", input),
	})
	if err != nil {
		return res, err
	}
	res.Analysis = analysis

	base := strings.TrimSuffix(input, ext)
	if opts.SaveJSON {
		res.JSONPath = base + ".voiceup.json"
		if err := SaveJSON(res.JSONPath, analysis); err != nil {
			slog.Warn("failed to save JSON", "err", err)
			res.JSONPath = ""
		} else {
			slog.Info("analysis JSON saved", "path", res.JSONPath)
		}
	}

	if opts.Download && analysis.AudioURL != "" {
		dst := base + ".cleaned" + audioExt(analysis.AudioURL)
		if err := svc.Download(ctx, analysis.AudioURL, dst); err != nil {
			slog.Warn("failed to download audio", "url", analysis.AudioURL, "err", err)
		} else {
			res.AudioPath = dst
			slog.Info("cleaned audio saved", "path", dst)
		}
	}
	return res, nil
}

// SaveJSON writes an analysis result as indented JSON.
func SaveJSON(path string, r *transcript.AnalyzeResult) error {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadJSON reads an analysis result saved by SaveJSON.
func LoadJSON(path string) (*transcript.AnalyzeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r transcript.AnalyzeResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &r, nil
}

// audioExt returns the extension of the file an audio URL points at,
// defaulting to .mp3.
func audioExt(rawURL string) string {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if ext := path.Ext(p); ext != "" {
		return ext
	}
	return ".mp3"
}

func uploadProgress(kind, file string) api.ProgressFunc {
	name := filepath.Base(file)
	return func(read, total int64) {
		pct := 0.0
		if total > 0 {
			pct = math.Min(float64(read)/float64(total)*100, 100)
		}
		slog.Debug("upload progress", "kind", kind, "file", name, "percent", fmt.Sprintf("%.1f%%", pct))
	}
}
