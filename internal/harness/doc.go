// Package harness runs YAML scenarios against the real engine.
//
// Each scenario gets a fresh in-memory store seeded with its widgets and
// gadgets, a deterministic clock and sequential correlation tokens, so the
// same scenario always produces a byte-identical trace. Traces serialize to
// canonical JSON and are compared against golden files with goldie:
//
//	go test ./internal/harness -update
//
// regenerates them.
//
// A scenario file looks like:
//
//	name: tailx_sig
//	description: sig over a single-widget gadget
//	widgets:
//	  - {name: rocket, parts: [spoke, wheel]}
//	gadgets:
//	  - {name: tailx, widgets: [rocket], functions: [sig]}
//	steps:
//	  - execute: {name: sig, gadget: tailx}
//	    expect: {output: "{widgets{0rocketfunctions{0signametailx"}
//	  - execute: {name: hash, gadget: tailx}
//	    expect: {error: UNSUPPORTED_FUNCTION}
//	  - get: {step: 0}
//	assertions:
//	  - {type: result_count, count: 1}
//
// Step kinds are execute, get, put_widget and delete_widget. Exactly one is
// set per step. The trace has one event per step, so assertions refer to
// steps by index.
package harness
