// Package catalog is the closed registry of functions gizmo can execute
// against a resolved gadget.
//
// Each function is identified by a FunctionID from a fixed enumeration and
// maps to a pure Strategy. Unknown names are rejected explicitly by Lookup;
// there is no dynamic registration.
//
// Strategies must be deterministic: the same ResolvedGadget always yields a
// byte-identical output, and they must not mutate their input.
package catalog
