package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gizmo/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Widgets int                        `json:"widgets"`
	Gadgets int                        `json:"gadgets"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <inventory-dir>",
		Short: "Validate an inventory without touching a database",
		Long: `Validate CUE widget and gadget declarations.

Reports every problem at once: malformed records, gadgets referencing
undeclared widgets, and functions the catalog does not implement.

Exit codes:
  0 - Inventory valid
  1 - Validation failed
  2 - Command error (directory missing, CUE does not load)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, loadErrors := LoadInventory(dir, LoadModeCollectAll)
	if loadResult == nil {
		return outputLoadFailure(formatter, loadErrors[0])
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	validationErrs := ValidateLoaded(loadResult, loadErrors, nil)
	if len(validationErrs) > 0 {
		return outputValidationErrors(formatter, validationErrs)
	}

	result := ValidationResult{
		Valid:   true,
		Widgets: len(loadResult.Widgets),
		Gadgets: len(loadResult.Gadgets),
	}
	return formatter.Success(result, fmt.Sprintf("✓ Inventory valid (%d widgets, %d gadgets)", result.Widgets, result.Gadgets))
}

// ValidateLoaded merges loader errors with inventory-level checks. existing
// names widgets already present in the target store.
func ValidateLoaded(res *LoadResult, loadErrors []error, existing []string) []compiler.ValidationError {
	var out []compiler.ValidationError
	for _, err := range loadErrors {
		code := ErrCodeGeneric
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			code = loadErr.Code
		}
		out = append(out, compiler.ValidationError{Field: "load", Message: err.Error(), Code: code})
	}
	return append(out, compiler.ValidateInventory(res.Widgets, res.Gadgets, existing)...)
}

// outputLoadFailure reports a directory that could not be loaded at all.
func outputLoadFailure(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	message := err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Message
	}
	_ = formatter.Error(code, message, nil)
	return reported(NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message)))
}

func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	failure := reported(NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs))))

	if formatter.JSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", err.Error())
	}
	return failure
}
