package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"voiceup/internal/api"
	"voiceup/internal/config"
	"voiceup/internal/voices"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	quiet      bool
	configPath string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "voiceup",
	Short: "Clean up filler words in recorded speech and re-voice it",
	Long: `VoiceUp uploads a speech recording to the voice-cleanup service, which
transcribes it, removes filler words and re-synthesizes the cleaned text in a
cloned voice. The CLI shows what was removed, lets you edit the cleaned text
word by word and regenerates the audio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		slog.Debug("config loaded", "api_base", cfg.APIBase, "voices", cfg.VoicesPath())
		return nil
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newClient() (*api.Client, error) {
	return api.NewClient(cfg.APIBase, cfg.Timeouts)
}

func voiceStore() *voices.Store {
	return voices.NewStore(cfg.VoicesPath())
}

// resolveVoice returns id, or the newest saved voice when id is empty.
func resolveVoice(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	saved := voiceStore().List()
	if len(saved) == 0 {
		return "", fmt.Errorf("no voice id given and no saved voices; run %q first", "voiceup clone")
	}
	slog.Debug("using newest saved voice", "voice_id", saved[0].VoiceID, "name", saved[0].Name)
	return saved[0].VoiceID, nil
}

// useColor reports whether styled output should be written to f.
func useColor(f *os.File, mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
