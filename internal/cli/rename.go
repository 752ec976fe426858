package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/backmassage/clipnamer/internal/config"
	"github.com/backmassage/clipnamer/internal/pipeline"
)

func NewRenameCmd(deps *Dependencies) *cobra.Command {
	var replay, noWait bool
	cmd := &cobra.Command{
		Use:   "rename <path>",
		Short: "Run one rename task on a finished recording",
		Long: "Run the same task the daemon runs when OBS reports a finished recording: wait for the remux, " +
			"remove the intermediate file and rename the result. Prints the final path.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(config.ExpandTilde(args[0]))
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				return err
			}

			cfg := deps.Config
			if noWait {
				cfg.MaxPolls = 1
			}
			kind := pipeline.KindRecording
			if replay {
				kind = pipeline.KindReplay
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			runner := pipeline.NewRunner(ctx, config.NewStore(cfg), deps.titles(cfg), deps.Log, nil)
			out := runner.RunOnce(ctx, kind, path)
			if out.Err != nil {
				return out.Err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replay, "replay", false, "treat the file as a saved replay")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "do not wait for a remux that has not started")
	return cmd
}
