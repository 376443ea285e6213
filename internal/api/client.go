package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"voiceup/internal/config"
	"voiceup/internal/transcript"
)

// minUploadBytes is the smallest recording the service accepts.
const minUploadBytes = 1000

// ErrSampleTooShort is returned before uploading a file the service would reject.
var ErrSampleTooShort = errors.New("recording is too short or empty")

// ProgressFunc is called with (bytesRead, totalBytes) during upload.
type ProgressFunc func(bytesRead, totalBytes int64)

// progressReader wraps an io.Reader and reports progress.
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	callback ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read += int64(n)
	if pr.callback != nil {
		pr.callback(pr.read, pr.total)
	}
	return n, err
}

// mimeFromExt returns the MIME type for common recording extensions.
func mimeFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".webm":
		return "audio/webm"
	case ".ogg", ".opus":
		return "audio/ogg"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a", ".mp4":
		return "audio/mp4"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".aac":
		return "audio/aac"
	default:
		return "application/octet-stream"
	}
}

// Client talks to the voice-cleanup service.
type Client struct {
	base     *url.URL
	http     *http.Client
	timeouts config.Timeouts
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, timeouts config.Timeouts) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse api base: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base %q: scheme must be http or https", baseURL)
	}
	return &Client{
		base:     base,
		http:     &http.Client{},
		timeouts: timeouts,
	}, nil
}

// AnalyzeRequest describes one speech recording to clean up.
type AnalyzeRequest struct {
	AudioPath string
	VoiceID   string
	Audience  string
	Style     string
	// Duration is the speech length in seconds; zero lets the service skip WPM.
	Duration float64
	Progress ProgressFunc
}

// Health checks that the service is up.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("health"), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	setHeaders(req)

	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(req, "Health check", &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("service status %q", out.Status)
	}
	return nil
}

// Clone uploads a voice sample and returns the new voice id.
func (c *Client) Clone(ctx context.Context, samplePath string, progress ProgressFunc) (string, error) {
	var out struct {
		VoiceID string `json:"voice_id"`
	}
	err := c.upload(ctx, "Voice cloning", "clone", c.timeouts.Clone, nil,
		&filePart{field: "voice_sample", path: samplePath}, progress, &out)
	if err != nil {
		return "", err
	}
	if out.VoiceID == "" {
		return "", errors.New("clone response has no voice_id")
	}
	return out.VoiceID, nil
}

// Analyze uploads a speech recording and returns the transcripts, filler
// counts and a relative URL to the re-synthesized audio.
func (c *Client) Analyze(ctx context.Context, r AnalyzeRequest) (*transcript.AnalyzeResult, error) {
	if strings.TrimSpace(r.VoiceID) == "" {
		return nil, errors.New("voice id is required")
	}
	fields := []formField{
		{"voice_id", r.VoiceID},
		{"audience", config.Pick(r.Audience, config.Audiences)},
		{"style", config.Pick(r.Style, config.Styles)},
		{"duration", strconv.FormatFloat(r.Duration, 'f', -1, 64)},
	}

	var out transcript.AnalyzeResult
	err := c.upload(ctx, "Analysis", "analyze", c.timeouts.Analyze, fields,
		&filePart{field: "audio", path: r.AudioPath}, r.Progress, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Synthesize renders text in the given voice and returns a relative audio URL.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	fields := []formField{
		{"text", text},
		{"voice_id", voiceID},
	}

	var out struct {
		AudioURL string `json:"audio_url"`
	}
	if err := c.upload(ctx, "TTS", "tts", c.timeouts.TTS, fields, nil, nil, &out); err != nil {
		return "", err
	}
	if out.AudioURL == "" {
		return "", errors.New("tts response has no audio_url")
	}
	return out.AudioURL, nil
}

// AudioURL resolves a relative audio URL returned by the service.
func (c *Client) AudioURL(rel string) string {
	return c.resolve(rel)
}

// Download fetches the audio at rel (relative to the api base) into dst.
func (c *Client) Download(ctx context.Context, rel, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.TTS)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(rel), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	setHeaders(req)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError("Download", resp)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("write audio: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

type formField struct {
	name, value string
}

type filePart struct {
	field string
	path  string
}

// upload POSTs a multipart form to path and decodes the JSON response into out.
func (c *Client) upload(ctx context.Context, op, path string, timeout time.Duration, fields []formField, file *filePart, progress ProgressFunc, out any) error {
	var (
		f    *os.File
		size int64
	)
	if file != nil {
		var err error
		f, err = os.Open(file.path)
		if err != nil {
			return fmt.Errorf("open file: %w", err)
		}
		defer f.Close()

		stat, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
		size = stat.Size()
		if size < minUploadBytes {
			return fmt.Errorf("%s: %w", filepath.Base(file.path), ErrSampleTooShort)
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Build multipart form body using a pipe.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		err := writeForm(mw, fields, file, f)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
		errCh <- err
	}()

	// Estimate total size: file size + ~1KB form overhead.
	body := &progressReader{
		reader:   pr,
		total:    size + 1024,
		callback: progress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), body)
	if err != nil {
		pr.Close()
		return fmt.Errorf("create request: %w", err)
	}
	setHeaders(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		<-errCh
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s timed out after %s: %w", op, timeout, err)
		}
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	// The service has answered; unblock the writer if it is still running.
	pr.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		<-errCh
		return responseError(op, resp)
	}
	if writeErr := <-errCh; writeErr != nil {
		return fmt.Errorf("multipart write error: %w", writeErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func writeForm(mw *multipart.Writer, fields []formField, file *filePart, f *os.File) error {
	for _, fld := range fields {
		if err := mw.WriteField(fld.name, fld.value); err != nil {
			return err
		}
	}
	if file == nil {
		return nil
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, filepath.Base(file.path)))
	h.Set("Content-Type", mimeFromExt(filepath.Ext(file.path)))
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

func (c *Client) resolve(rel string) string {
	ref, err := url.Parse(strings.TrimLeft(rel, "/"))
	if err != nil {
		return c.base.String() + strings.TrimLeft(rel, "/")
	}
	return c.base.ResolveReference(ref).String()
}

// do sends req and decodes a JSON 2xx response into out.
func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
