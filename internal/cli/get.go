package cli

import (
	"github.com/spf13/cobra"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	Database string
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <token>",
		Short: "Fetch a recorded function result by token",
		Long: `Fetch a recorded function result by its correlation token.

The stored output is returned as recorded; nothing is recomputed.

Example:
  gizmo get 6f1c2a9e-0b7d-4c3a-9f10-2d4e5a6b7c8d --db ./gizmo.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], cmd)
		},
	}

	addDatabaseFlag(cmd, &opts.Database)

	return cmd
}

func runGet(opts *GetOptions, token string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := openApp(cmd, opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.engine.GetByToken(cmd.Context(), token)
	if err != nil {
		return formatter.Fail("lookup failed", err)
	}

	return formatter.Success(result, formatResult(result))
}
