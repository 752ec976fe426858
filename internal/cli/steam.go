package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewSteamCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "steam",
		Short: "Print the running Steam game",
		Long:  "Print the running Steam app ID and name, tab separated, or nothing when no game is running.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := deps.Steam.RunningGame()
			if err != nil {
				return fmt.Errorf("reading Steam state: %w", err)
			}
			if g == nil {
				deps.Log.Info("No Steam game running")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", g.ID, g.Name)
			return nil
		},
	}
}
