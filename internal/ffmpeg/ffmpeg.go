package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// MediaInfo holds duration and codec information from ffprobe.
type MediaInfo struct {
	Duration float64
	Codec    string
}

// Available returns true if ffmpeg is on the PATH.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// probeOutput mirrors ffprobe JSON structure.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecName string `json:"codec_name"`
	} `json:"streams"`
}

// ProbeMedia uses ffprobe to get media duration and audio codec.
func ProbeMedia(ctx context.Context, path string) (*MediaInfo, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name:format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(out)
}

func parseProbe(out []byte) (*MediaInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("ffprobe JSON parse error: %w", err)
	}

	// webm from browsers often reports N/A; callers treat 0 as unknown.
	dur, _ := strconv.ParseFloat(probe.Format.Duration, 64)

	codec := "N/A"
	if len(probe.Streams) > 0 && probe.Streams[0].CodecName != "" {
		codec = probe.Streams[0].CodecName
	}

	return &MediaInfo{Duration: dur, Codec: codec}, nil
}

// Duration returns the length of path in whole seconds, or 0 when it cannot
// be probed.
func Duration(ctx context.Context, path string) float64 {
	info, err := ProbeMedia(ctx, path)
	if err != nil {
		slog.Debug("duration probe failed, sending 0", "file", filepath.Base(path), "err", err)
		return 0
	}
	return float64(int(info.Duration + 0.5))
}

// ExtractAudio extracts the audio stream from a video file using ffmpeg -vn -c:a copy.
func ExtractAudio(ctx context.Context, videoPath, outputPath string) error {
	slog.Info("extracting audio", "input", filepath.Base(videoPath), "output", filepath.Base(outputPath))

	cmd := exec.CommandContext(ctx,
		"ffmpeg", "-i", videoPath,
		"-vn", "-c:a", "copy", "-y",
		outputPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract audio failed: %w\n%s", err, string(out))
	}
	return nil
}

// IsVideoExtension returns true for common video file extensions.
func IsVideoExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".mp4", ".mkv", ".mov", ".avi", ".flv":
		return true
	}
	return false
}

// LogMediaInfo logs file size and media information.
func LogMediaInfo(ctx context.Context, path string) *MediaInfo {
	stat, err := os.Stat(path)
	if err != nil {
		slog.Warn("cannot stat file", "path", path, "err", err)
		return nil
	}

	attrs := []any{"file", filepath.Base(path), "size", humanize.Bytes(uint64(stat.Size()))}

	info, err := ProbeMedia(ctx, path)
	if err == nil && info != nil {
		minutes := int(info.Duration) / 60
		seconds := int(info.Duration) % 60
		attrs = append(attrs, "duration", fmt.Sprintf("%02d:%02d", minutes, seconds), "codec", info.Codec)
	}

	slog.Info("media info", attrs...)
	return info
}
