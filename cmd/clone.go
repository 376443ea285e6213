package cmd

import (
	"fmt"
	"path/filepath"

	"voiceup/internal/ffmpeg"

	"github.com/spf13/cobra"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <voice-sample>",
	Short: "Clone a voice from a short recording and save it",
	Args:  cobra.ExactArgs(1),
	RunE:  runClone,
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}

func runClone(cmd *cobra.Command, args []string) error {
	samplePath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := checkInput(samplePath); err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	ffmpeg.LogMediaInfo(ctx, samplePath)
	voiceID, err := client.Clone(ctx, samplePath, nil)
	if err != nil {
		return err
	}

	saved, err := voiceStore().Add(voiceID)
	if err != nil {
		return fmt.Errorf("save voice: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", saved.VoiceID, saved.Name)
	return nil
}
