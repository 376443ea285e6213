package cmd

import (
	"fmt"
	"os"

	"voiceup/internal/transcript"
	"voiceup/internal/worker"

	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <result.json>",
	Short: "Show the original transcript with fillers and removed words marked",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

var (
	diffAlign bool
	diffColor string
	diffWidth int
)

func init() {
	diffCmd.Flags().BoolVar(&diffAlign, "align", false, "order-aware word alignment instead of per-word counting")
	diffCmd.Flags().StringVar(&diffColor, "color", "auto", "color output: auto, always, never")
	diffCmd.Flags().IntVar(&diffWidth, "width", 0, "wrap width (default from config, 0 in config disables)")

	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	result, err := worker.LoadJSON(args[0])
	if err != nil {
		return err
	}

	opts := transcript.RenderOptions{
		Color: useColor(os.Stdout, diffColor),
		Width: cfg.WrapWidth,
	}
	if cmd.Flags().Changed("width") {
		opts.Width = diffWidth
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Original (fillers marked):")
	if err := transcript.Render(out, transcript.Tokenize(result.RawTranscript, result.Fillers), opts); err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)

	var diffs []transcript.WordDiff
	if diffAlign {
		diffs = transcript.AlignWords(result.RawTranscript, result.CleanedTranscript)
	} else {
		diffs = transcript.DiffWords(result.RawTranscript, result.CleanedTranscript)
	}
	fmt.Fprintf(out, "Removed words (%d):\n", transcript.RemovedCount(diffs))
	if err := transcript.RenderDiff(out, diffs, opts); err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Cleaned:")
	fmt.Fprintln(out, result.CleanedTranscript)
	return nil
}
