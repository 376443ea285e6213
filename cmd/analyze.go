package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"voiceup/internal/config"
	"voiceup/internal/transcript"
	"voiceup/internal/worker"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <speech-file>...",
	Short: "Remove filler words from speech recordings",
	Long: `Upload one or more speech recordings for analysis. Each is transcribed,
cleaned of filler words and re-synthesized in the chosen voice. With
--sample a new voice is cloned first and used for every file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeVoiceID  string
	analyzeSample   string
	audience        string
	style           string
	noAsync         bool
	maxConcurrent   int
	maxRetries      int
	rateLimit       int
	saveJSON        bool
	downloadAudio   bool
	showTranscripts bool
)

var validExts = map[string]bool{
	".mp3": true, ".m4a": true, ".wav": true, ".flac": true,
	".ogg": true, ".opus": true, ".aac": true, ".webm": true,
	".mp4": true, ".mov": true, ".mkv": true, ".avi": true, ".flv": true,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeVoiceID, "voice-id", "", "voice to re-synthesize with (default: newest saved voice)")
	analyzeCmd.Flags().StringVar(&analyzeSample, "sample", "", "clone a voice from this recording first")
	analyzeCmd.Flags().StringVar(&audience, "audience", "", "audience: "+strings.Join(config.Audiences, ", "))
	analyzeCmd.Flags().StringVar(&style, "style", "", "style: "+strings.Join(config.Styles, ", "))
	analyzeCmd.Flags().BoolVar(&noAsync, "no-async", false, "analyze files one at a time")
	analyzeCmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "j", 0, "max concurrent uploads (default from config)")
	analyzeCmd.Flags().IntVar(&maxRetries, "max-retries", 1, "attempts per file for transient failures")
	analyzeCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "API requests per minute (default from config)")
	analyzeCmd.Flags().BoolVar(&saveJSON, "save-json", true, "save <input>.voiceup.json next to each input")
	analyzeCmd.Flags().BoolVar(&downloadAudio, "download", false, "download the cleaned audio next to each input")
	analyzeCmd.Flags().BoolVar(&showTranscripts, "show", false, "print the highlighted transcript for each file")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	inputs := make([]string, len(args))
	for i, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		if err := checkInput(abs); err != nil {
			return err
		}
		inputs[i] = abs
	}

	opts := worker.Options{
		Inputs:          inputs,
		Audience:        cfg.Audience,
		Style:           cfg.Style,
		NoAsync:         noAsync,
		MaxConcurrent:   cfg.MaxConcurrent,
		MaxRetries:      maxRetries,
		RateLimitPerMin: cfg.RateLimitPerMin,
		SaveJSON:        saveJSON,
		Download:        downloadAudio,
		Voices:          voiceStore(),
	}
	if audience != "" {
		opts.Audience = audience
	}
	if style != "" {
		opts.Style = style
	}
	if cmd.Flags().Changed("max-concurrent") {
		opts.MaxConcurrent = maxConcurrent
	}
	if cmd.Flags().Changed("rate-limit") {
		opts.RateLimitPerMin = rateLimit
	}

	if analyzeSample != "" {
		abs, err := filepath.Abs(analyzeSample)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		if err := checkInput(abs); err != nil {
			return err
		}
		opts.SamplePath = abs
	} else {
		id, err := resolveVoice(analyzeVoiceID)
		if err != nil {
			return err
		}
		opts.VoiceID = id
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	report, err := worker.Run(ctx, client, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := useColor(os.Stdout, "auto")
	for _, r := range report.Results {
		fmt.Fprintf(out, "== %s\n", filepath.Base(r.Input))
		printSummary(out, transcript.Summarize(r.Analysis))
		if showTranscripts {
			fmt.Fprintln(out)
			if err := transcript.Render(out, transcript.Tokenize(r.Analysis.RawTranscript, r.Analysis.Fillers),
				transcript.RenderOptions{Color: color, Width: cfg.WrapWidth}); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		if r.AudioPath != "" {
			fmt.Fprintf(out, "audio: %s\n", r.AudioPath)
		} else if r.Analysis.AudioURL != "" {
			fmt.Fprintf(out, "audio: %s\n", client.AudioURL(r.Analysis.AudioURL))
		}
		fmt.Fprintln(out)
	}

	if !quiet {
		slog.Info("done", "files", len(report.Results), "voice_id", report.VoiceID)
	}
	return nil
}

// checkInput verifies path exists and has a supported media extension.
func checkInput(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !validExts[ext] {
		return fmt.Errorf("unsupported file type: %s", ext)
	}
	return nil
}
