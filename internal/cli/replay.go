package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <token>",
		Short: "Recompute a recorded result and compare it with the stored output",
		Long: `Recompute the function recorded under a token against the current
inventory and compare the output with the stored one. Nothing is written.

Exit codes:
  0 - Recomputed output matches the stored output
  1 - Outputs differ, or the result can no longer be computed
  2 - Command error

Example:
  gizmo replay 6f1c2a9e-0b7d-4c3a-9f10-2d4e5a6b7c8d --db ./gizmo.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	addDatabaseFlag(cmd, &opts.Database)

	return cmd
}

func runReplay(opts *ReplayOptions, token string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := openApp(cmd, opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.engine.Replay(cmd.Context(), token)
	if err != nil {
		return formatter.Fail("replay failed", err)
	}

	if res.Match {
		return formatter.Success(res, fmt.Sprintf("✓ %s %s on %s reproduces the stored output",
			token, res.Stored.Name, res.Stored.Gadget))
	}

	text := fmt.Sprintf("✗ %s %s on %s has drifted\n  stored:     %s\n  recomputed: %s",
		token, res.Stored.Name, res.Stored.Gadget, res.Stored.Output, res.Recomputed)
	if err := formatter.Success(res, text); err != nil {
		return err
	}
	return reported(NewExitError(ExitFailure, "replay output differs from stored output"))
}
