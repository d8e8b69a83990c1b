package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gizmo/internal/ir"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Database string
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <function> <gadget>",
		Short: "Execute a function against a stored gadget",
		Long: `Execute a function against a stored gadget and record the result.

Exit codes:
  0 - Function executed, result recorded
  1 - Domain failure (unknown gadget, unsupported function, ...)
  2 - Command error (database unreachable, store failure)

Example:
  gizmo exec sig tailx --db ./gizmo.db
  gizmo exec hash devel --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], args[1], cmd)
		},
	}

	addDatabaseFlag(cmd, &opts.Database)

	return cmd
}

func runExec(opts *ExecOptions, function, gadget string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := openApp(cmd, opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.engine.Execute(cmd.Context(), ir.ExecuteRequest{Name: function, Gadget: gadget})
	if err != nil {
		return formatter.Fail("execution failed", err)
	}

	return formatter.Success(result, formatResult(result))
}

// formatResult renders a function result as aligned key/value lines.
func formatResult(r ir.FunctionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "uuid:   %s\n", r.Token)
	fmt.Fprintf(&b, "name:   %s\n", r.Name)
	fmt.Fprintf(&b, "gadget: %s\n", r.Gadget)
	fmt.Fprintf(&b, "start:  %s\n", r.Start.UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "output: %s", r.Output)
	return b.String()
}
