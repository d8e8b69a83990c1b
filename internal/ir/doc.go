// Package ir provides the canonical domain types for gizmo.
//
// This package contains type definitions, canonical JSON and content digests
// only. All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Links between records are by name, never by pointer
//   - ResolvedGadget is derived per execution and never persisted
//   - FunctionResult is immutable once stored
//   - All JSON tags use the field names of the public API
package ir
