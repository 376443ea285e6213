package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the voice-cleanup service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		if err := client.Health(ctx); err != nil {
			return fmt.Errorf("%s: %w", cfg.APIBase, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", cfg.APIBase)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
