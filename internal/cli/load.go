package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gizmo/internal/engine"
	"github.com/roach88/gizmo/internal/ir"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Database string
}

// LoadSummary reports what a load wrote.
type LoadSummary struct {
	WidgetsCreated int `json:"widgets_created"`
	WidgetsUpdated int `json:"widgets_updated"`
	GadgetsCreated int `json:"gadgets_created"`
	GadgetsUpdated int `json:"gadgets_updated"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <inventory-dir>",
		Short: "Load widgets and gadgets from CUE files into the store",
		Long: `Load CUE widget and gadget declarations into the store.

The whole directory is validated first, with gadget widget references
resolving against both the files and the widgets already stored. Nothing
is written if validation fails. Widgets are then upserted, followed by
gadgets.

Example:
  gizmo load ./inventory --db ./gizmo.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	addDatabaseFlag(cmd, &opts.Database)

	return cmd
}

func runLoad(opts *LoadOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, loadErrors := LoadInventory(dir, LoadModeCollectAll)
	if loadResult == nil {
		return outputLoadFailure(formatter, loadErrors[0])
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	a, err := openApp(cmd, opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	stored, err := a.inventory.ListWidgets(ctx)
	if err != nil {
		return formatter.Fail("list widgets", err)
	}
	existing := make([]string, len(stored))
	for i, w := range stored {
		existing[i] = w.Name
	}

	if errs := ValidateLoaded(loadResult, loadErrors, existing); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	var summary LoadSummary
	for _, w := range loadResult.Widgets {
		created, err := upsertWidget(ctx, a.inventory, w)
		if err != nil {
			return formatter.Fail(fmt.Sprintf("load widget %q", w.Name), err)
		}
		if created {
			summary.WidgetsCreated++
		} else {
			summary.WidgetsUpdated++
		}
		formatter.VerboseLog("widget %s (created=%t)", w.Name, created)
	}
	for _, g := range loadResult.Gadgets {
		created, err := upsertGadget(ctx, a.inventory, g)
		if err != nil {
			return formatter.Fail(fmt.Sprintf("load gadget %q", g.Name), err)
		}
		if created {
			summary.GadgetsCreated++
		} else {
			summary.GadgetsUpdated++
		}
		formatter.VerboseLog("gadget %s (created=%t)", g.Name, created)
	}

	a.logger.Info("inventory loaded", "dir", dir,
		"widgets", len(loadResult.Widgets), "gadgets", len(loadResult.Gadgets))

	return formatter.Success(summary, fmt.Sprintf(
		"✓ Loaded %d widget(s) (%d new), %d gadget(s) (%d new)",
		len(loadResult.Widgets), summary.WidgetsCreated,
		len(loadResult.Gadgets), summary.GadgetsCreated))
}

func upsertWidget(ctx context.Context, inv *engine.Inventory, w ir.Widget) (created bool, err error) {
	if _, err = inv.CreateWidget(ctx, w); err == nil {
		return true, nil
	}
	if engine.CodeOf(err) != engine.ErrCodeAlreadyExists {
		return false, err
	}
	_, err = inv.UpdateWidget(ctx, w)
	return false, err
}

func upsertGadget(ctx context.Context, inv *engine.Inventory, g ir.Gadget) (created bool, err error) {
	if _, err = inv.CreateGadget(ctx, g); err == nil {
		return true, nil
	}
	if engine.CodeOf(err) != engine.ErrCodeAlreadyExists {
		return false, err
	}
	_, err = inv.UpdateGadget(ctx, g)
	return false, err
}
