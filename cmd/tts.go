package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voiceup/internal/api"
	"voiceup/internal/playback"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var ttsCmd = &cobra.Command{
	Use:   "tts <text>...",
	Short: "Speak text in a saved voice",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTTS,
}

var (
	ttsVoiceID string
	ttsOutput  string
	ttsPlay    bool
)

func init() {
	ttsCmd.Flags().StringVar(&ttsVoiceID, "voice-id", "", "voice to speak with (default: newest saved voice)")
	ttsCmd.Flags().StringVarP(&ttsOutput, "output", "o", "", "output audio path (default: voiceup-<uuid>.mp3)")
	ttsCmd.Flags().BoolVar(&ttsPlay, "play", false, "play the audio when done")

	rootCmd.AddCommand(ttsCmd)
}

func runTTS(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("no text to speak")
	}
	voiceID, err := resolveVoice(ttsVoiceID)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	rel, err := client.Synthesize(ctx, text, voiceID)
	if err != nil {
		return err
	}

	dst := ttsOutput
	if dst == "" {
		dst = "voiceup-" + uuid.NewString() + ".mp3"
	}
	if err := client.Download(ctx, rel, dst); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dst)

	if ttsPlay {
		player := playback.NewManager(cfg.Player)
		if err := player.Play(ctx, "tts", dst); err != nil {
			return err
		}
		return player.Wait(ctx)
	}
	return nil
}

// fetchAudio downloads rel into a temporary file and returns its path.
func fetchAudio(ctx context.Context, client *api.Client, rel string) (string, error) {
	dst := filepath.Join(os.TempDir(), "voiceup-"+uuid.NewString()+".mp3")
	if err := client.Download(ctx, rel, dst); err != nil {
		return "", err
	}
	return dst, nil
}
