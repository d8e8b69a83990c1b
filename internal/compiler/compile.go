package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/gizmo/internal/ir"
)

// CompileWidget parses a CUE value into a Widget. The widget name is the
// value's struct label:
//
//	widget: rocket: parts: ["spoke", "wheel"]
//
//	w, err := CompileWidget(v.LookupPath(cue.ParsePath("widget.rocket")))
func CompileWidget(v cue.Value) (*ir.Widget, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	w := &ir.Widget{Name: LabelName(v)}

	parts, err := stringList(v, "parts")
	if err != nil {
		return nil, err
	}
	w.Parts = parts
	return w, nil
}

// CompileGadget parses a CUE value into a Gadget:
//
//	gadget: tailx: {
//		widgets:   ["rocket"]
//		functions: ["sig"]
//	}
func CompileGadget(v cue.Value) (*ir.Gadget, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	g := &ir.Gadget{Name: LabelName(v)}

	var err error
	if g.Widgets, err = stringList(v, "widgets"); err != nil {
		return nil, err
	}
	if g.Functions, err = stringList(v, "functions"); err != nil {
		return nil, err
	}
	return g, nil
}

// LabelName returns the unquoted final path label of v, or "" for a root value.
func LabelName(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	last := sels[len(sels)-1]
	if last.LabelType() == cue.StringLabel {
		return last.Unquoted()
	}
	return last.String()
}

// stringList reads a required list of non-empty strings. Returns a non-nil
// slice for an empty list.
func stringList(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Pos:     v.Pos(),
		}
	}

	iter, err := fv.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a list of strings", field),
			Pos:     fv.Pos(),
		}
	}

	out := []string{}
	for i := 0; iter.Next(); i++ {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		if s == "" {
			return nil, &CompileError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "must not be empty",
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}
