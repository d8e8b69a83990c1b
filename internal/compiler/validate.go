package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/gizmo/internal/catalog"
	"github.com/roach88/gizmo/internal/ir"
)

// Validation error codes (E200-E299)
const (
	// Widget errors (E200-E209)
	ErrWidgetNameEmpty = "E200" // widget name is required
	ErrWidgetPartEmpty = "E201" // part names must be non-empty
	ErrDuplicateWidget = "E202" // widget declared twice

	// Gadget errors (E210-E219)
	ErrGadgetNameEmpty   = "E210" // gadget name is required
	ErrUnknownWidgetRef  = "E211" // widget reference does not resolve
	ErrUnknownFunction   = "E212" // function not implemented by the catalog
	ErrDuplicateFunction = "E213" // function listed twice
	ErrDuplicateGadget   = "E214" // gadget declared twice
)

// ValidationError represents an inventory validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateInventory checks compiled widgets and gadgets as a set.
// Returns all errors found (does not fail-fast).
//
// Gadget widget references resolve against the declared widgets plus
// existing, the names already present in the target store (nil for a
// store-less check).
func ValidateInventory(widgets []ir.Widget, gadgets []ir.Gadget, existing []string) []ValidationError {
	var errs []ValidationError

	known := make(map[string]bool, len(widgets)+len(existing))
	for _, name := range existing {
		known[name] = true
	}

	declared := make(map[string]bool, len(widgets))
	for _, w := range widgets {
		field := "widget." + w.Name
		if strings.TrimSpace(w.Name) == "" {
			errs = append(errs, ValidationError{Field: "widget", Message: "name is required", Code: ErrWidgetNameEmpty})
			continue
		}
		if declared[w.Name] {
			errs = append(errs, ValidationError{Field: field, Message: "declared more than once", Code: ErrDuplicateWidget})
		}
		declared[w.Name] = true
		known[w.Name] = true
		for i, p := range w.Parts {
			if strings.TrimSpace(p) == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.parts[%d]", field, i),
					Message: "part name must be non-empty",
					Code:    ErrWidgetPartEmpty,
				})
			}
		}
	}

	seenGadgets := make(map[string]bool, len(gadgets))
	for _, g := range gadgets {
		errs = append(errs, validateGadget(g, known, seenGadgets)...)
	}

	return errs
}

func validateGadget(g ir.Gadget, known, seen map[string]bool) []ValidationError {
	var errs []ValidationError
	field := "gadget." + g.Name

	if strings.TrimSpace(g.Name) == "" {
		return []ValidationError{{Field: "gadget", Message: "name is required", Code: ErrGadgetNameEmpty}}
	}
	if seen[g.Name] {
		errs = append(errs, ValidationError{Field: field, Message: "declared more than once", Code: ErrDuplicateGadget})
	}
	seen[g.Name] = true

	for i, ref := range g.Widgets {
		if !known[ref] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.widgets[%d]", field, i),
				Message: fmt.Sprintf("widget %q is not defined", ref),
				Code:    ErrUnknownWidgetRef,
			})
		}
	}

	listed := make(map[string]bool, len(g.Functions))
	for i, fn := range g.Functions {
		f := fmt.Sprintf("%s.functions[%d]", field, i)
		if listed[fn] {
			errs = append(errs, ValidationError{Field: f, Message: fmt.Sprintf("function %q listed more than once", fn), Code: ErrDuplicateFunction})
		}
		listed[fn] = true
		if !catalog.Implements(fn) {
			errs = append(errs, ValidationError{
				Field:   f,
				Message: fmt.Sprintf("function %q is not implemented (available: %s)", fn, strings.Join(catalog.Names(), ", ")),
				Code:    ErrUnknownFunction,
			})
		}
	}

	return errs
}
