// Package engine implements the gizmo function execution engine.
//
// The engine receives a request naming a function and a gadget, validates
// it, resolves the gadget against the widget and gadget stores, computes the
// function's output through the closed catalog and persists one immutable
// FunctionResult.
//
// Execution Flow:
//  1. Request fields present (INVALID_REQUEST)
//  2. Gadget exists, then each widget in order (GADGET_NOT_FOUND, WIDGET_NOT_FOUND)
//  3. Gadget declares the function (UNSUPPORTED_FUNCTION)
//  4. Catalog implements the function (UNIMPLEMENTED_FUNCTION)
//  5. Strategy computes the output (pure, no I/O)
//  6. Token + start stamped, record handed to the RecordStore
//
// Exactly one record is written per successful execution and none on any
// failure path. The engine holds no mutable state between requests: store
// reads and the single record write are the only suspension points, and
// context cancellation from those calls is returned unchanged. No retries.
//
// Retrieval by token never recomputes; the stored output is returned as-is
// even if the gadget or its widgets have since changed.
//
// The package also hosts Inventory, the validated write path for widgets and
// gadgets used by the API and CLI.
package engine
