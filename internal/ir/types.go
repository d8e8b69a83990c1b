package ir

import "time"

// Widget is a named, ordered list of part names.
type Widget struct {
	Name  string   `json:"name"`
	Parts []string `json:"parts"`
}

// Gadget is a named assembly of widget references plus the function names it
// declares support for. Widgets are referenced by name and resolved at
// execution time.
type Gadget struct {
	Name      string   `json:"name"`
	Widgets   []string `json:"widgets"`
	Functions []string `json:"functions"`
}

// Supports reports whether the gadget declares the named function.
func (g Gadget) Supports(function string) bool {
	for _, f := range g.Functions {
		if f == function {
			return true
		}
	}
	return false
}

// ResolvedGadget is a gadget with every widget reference replaced by the
// full widget. Built fresh per execution, never stored.
type ResolvedGadget struct {
	Name      string   `json:"name"`
	Widgets   []Widget `json:"widgets"`
	Functions []string `json:"functions"`
}

// Supports reports whether the resolved gadget declares the named function.
func (g ResolvedGadget) Supports(function string) bool {
	for _, f := range g.Functions {
		if f == function {
			return true
		}
	}
	return false
}

// WidgetNames returns the widget references in resolution order.
func (g ResolvedGadget) WidgetNames() []string {
	names := make([]string, len(g.Widgets))
	for i, w := range g.Widgets {
		names[i] = w.Name
	}
	return names
}

// ExecuteRequest asks the engine to run a function against a gadget.
type ExecuteRequest struct {
	Name   string `json:"name"`
	Gadget string `json:"gadget"`
}

// FunctionResult is the immutable record of one function execution.
type FunctionResult struct {
	ID     string    `json:"id"`     // Store-assigned identifier
	Token  string    `json:"uuid"`   // Correlation token (UUID v4)
	Name   string    `json:"name"`   // Function name
	Gadget string    `json:"gadget"` // Gadget name
	Output string    `json:"output"`
	Start  time.Time `json:"start"`
}
