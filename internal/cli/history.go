package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gizmo/internal/ir"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <gadget>",
		Short: "List recorded function results for a gadget",
		Long: `List recorded function results for a gadget, oldest first.

--limit keeps the most recent N results.

The gadget does not need to exist any more; results outlive inventory.

Example:
  gizmo history tailx --db ./gizmo.db
  gizmo history tailx --limit 10 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	addDatabaseFlag(cmd, &opts.Database)
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum results, 0 for unlimited (default $GIZMO_HISTORY_LIMIT or 100)")

	return cmd
}

func runHistory(opts *HistoryOptions, gadget string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := openApp(cmd, opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer a.Close()

	limit := a.cfg.HistoryLimit
	if cmd.Flags().Changed("limit") {
		if opts.Limit < 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("--limit must be >= 0, got %d", opts.Limit))
		}
		limit = opts.Limit
	}

	results, err := a.engine.History(cmd.Context(), gadget, limit)
	if err != nil {
		return formatter.Fail("history failed", err)
	}
	if results == nil {
		results = []ir.FunctionResult{}
	}
	formatter.VerboseLog("%d result(s) for %s (limit %d)", len(results), gadget, limit)

	return formatter.Success(results, formatHistory(gadget, results))
}

func formatHistory(gadget string, results []ir.FunctionResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results for %s.", gadget)
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %s  %-4s  %s", r.Start.UTC().Format(time.RFC3339), r.Token, r.Name, r.Output)
	}
	return b.String()
}
