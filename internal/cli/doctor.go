package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/clipnamer/internal/check"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check OBS, Steam, window and title service access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			res := check.Run(ctx, deps.Config, check.Deps{
				Steam:  deps.Steam,
				Window: deps.Window,
				Twitch: deps.twitchClient(deps.Config),
			}, deps.Log)
			if !res.OK() {
				return fmt.Errorf("%d required check(s) failed: %w", len(res.Failures), res.Failures[0])
			}
			deps.Log.Success("Ready to rename recordings")
			return nil
		},
	}
}
