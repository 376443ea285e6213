package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"voiceup/internal/playback"
	"voiceup/internal/voices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// previewText is spoken by "voices preview" when no text is given.
const previewText = "Hi! This is how I sound after cleanup. Clear, confident, and to the point."

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "Manage saved voices",
}

var voicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved voices, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		saved := voiceStore().List()
		if len(saved) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no saved voices")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "VOICE ID\tNAME\tCREATED")
		for _, v := range saved {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", v.VoiceID, v.Name, humanize.Time(v.Created()))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d slots used\n", len(saved), voices.MaxSaved)
		return nil
	},
}

var voicesRenameCmd = &cobra.Command{
	Use:   "rename <voice-id> <name>...",
	Short: "Rename a saved voice",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(strings.Join(args[1:], " "))
		if name == "" {
			return fmt.Errorf("name must not be empty")
		}
		return voiceStore().Rename(args[0], name)
	},
}

var voicesDeleteCmd = &cobra.Command{
	Use:     "delete <voice-id>",
	Aliases: []string{"rm"},
	Short:   "Forget a saved voice",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return voiceStore().Delete(args[0])
	},
}

var voicesPreviewCmd = &cobra.Command{
	Use:   "preview <voice-id> [text]...",
	Short: "Play a short sample in a saved voice",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := voiceStore().Get(args[0])
		if err != nil {
			return err
		}
		text := previewText
		if len(args) > 1 {
			text = strings.Join(args[1:], " ")
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		rel, err := client.Synthesize(ctx, text, v.VoiceID)
		if err != nil {
			return err
		}
		file, err := fetchAudio(ctx, client, rel)
		if err != nil {
			return err
		}
		defer removeQuietly(file)

		fmt.Fprintf(cmd.OutOrStdout(), "playing %s\n", v.Name)
		player := playback.NewManager(cfg.Player)
		if err := player.Play(ctx, v.VoiceID, file); err != nil {
			return err
		}
		return player.Wait(ctx)
	},
}

func init() {
	voicesCmd.AddCommand(voicesListCmd, voicesRenameCmd, voicesDeleteCmd, voicesPreviewCmd)
	rootCmd.AddCommand(voicesCmd)
}
