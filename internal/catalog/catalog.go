package catalog

import (
	"github.com/roach88/gizmo/internal/ir"
)

// FunctionID identifies a function implemented by the catalog.
type FunctionID string

const (
	// Sig serializes the gadget structure into a marker string.
	Sig FunctionID = "sig"

	// Hash digests the resolved gadget structure.
	Hash FunctionID = "hash"
)

// Strategy computes a function's output from a resolved gadget.
type Strategy interface {
	ID() FunctionID
	Compute(g ir.ResolvedGadget) string
}

// registry is the fixed function table in declaration order.
var registry = []Strategy{
	sigStrategy{},
	hashStrategy{},
}

// Lookup returns the strategy implementing the named function.
// Returns false for names the catalog does not implement.
func Lookup(name string) (Strategy, bool) {
	for _, s := range registry {
		if string(s.ID()) == name {
			return s, true
		}
	}
	return nil, false
}

// Implements reports whether the catalog has a strategy for name.
func Implements(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Names returns the implemented function names in declaration order.
func Names() []string {
	names := make([]string, len(registry))
	for i, s := range registry {
		names[i] = string(s.ID())
	}
	return names
}
