package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"voiceup/internal/transcript"
	"voiceup/internal/worker"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <result.json>",
	Short: "Show filler statistics for a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := worker.LoadJSON(args[0])
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), transcript.Summarize(result))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func printSummary(w io.Writer, s transcript.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "fillers removed\t%d\n", s.TotalFillers)
	fmt.Fprintf(tw, "words saved\t%d\n", s.WordsSaved)
	fmt.Fprintf(tw, "filler rate\t%d%%\n", s.FillerRate)
	if s.OriginalWPM > 0 || s.CleanedWPM > 0 {
		fmt.Fprintf(tw, "pace\t%d -> %d wpm\n", s.OriginalWPM, s.CleanedWPM)
	}
	for _, f := range s.Breakdown {
		fmt.Fprintf(tw, "  %q\t%dx\n", f.Word, f.Count)
	}
	tw.Flush()
}
