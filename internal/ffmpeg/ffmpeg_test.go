package ffmpeg

import (
	"context"
	"path/filepath"
	"testing"
)

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name      string
		out       string
		wantDur   float64
		wantCodec string
		wantErr   bool
	}{
		{"Full", `{"format":{"duration":"12.480000"},"streams":[{"codec_name":"opus"}]}`, 12.48, "opus", false},
		{"Unknown duration", `{"format":{"duration":"N/A"},"streams":[{"codec_name":"opus"}]}`, 0, "opus", false},
		{"No streams", `{"format":{"duration":"3.0"}}`, 3, "N/A", false},
		{"Garbage", `not json`, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := parseProbe([]byte(tt.out))
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProbe: %v", err)
			}
			if info.Duration != tt.wantDur || info.Codec != tt.wantCodec {
				t.Errorf("got %+v, want duration %v codec %q", info, tt.wantDur, tt.wantCodec)
			}
		})
	}
}

func TestDuration_FallsBackToZero(t *testing.T) {
	got := Duration(context.Background(), filepath.Join(t.TempDir(), "missing.webm"))
	if got != 0 {
		t.Errorf("Duration = %v, want 0 for unprobeable file", got)
	}
}

func TestIsVideoExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".mp4", true},
		{".MOV", true},
		{".webm", false},
		{".mp3", false},
	}

	for _, tt := range tests {
		if got := IsVideoExtension(tt.ext); got != tt.want {
			t.Errorf("IsVideoExtension(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}
