package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/gizmo/internal/engine"
	"github.com/roach88/gizmo/internal/store"
)

// Assertion validates the trace or the final store state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "result_count": total stored results equals Count
	// - "history": stored results for Gadget equals Count
	// - "output_equal": every step in Steps produced the same output
	// - "output_differs": the steps in Steps produced pairwise different outputs
	Type string `yaml:"type"`

	// Count is the expected number of results (result_count, history).
	Count int `yaml:"count,omitempty"`

	// Gadget is the gadget whose history is checked (history).
	Gadget string `yaml:"gadget,omitempty"`

	// Steps are step indexes (output_equal, output_differs).
	Steps []int `yaml:"steps,omitempty"`
}

// Assertion type constants.
const (
	AssertResultCount   = "result_count"
	AssertHistory       = "history"
	AssertOutputEqual   = "output_equal"
	AssertOutputDiffers = "output_differs"
)

// AssertionContext provides access to the scenario's store and engine.
type AssertionContext struct {
	Ctx    context.Context
	Store  *store.Store
	Engine *engine.Engine
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		switch {
		case ev.Error != "":
			fmt.Fprintf(&buf, "  [%d] %s %s %s -> %s\n", ev.Step, ev.Op, ev.Function, ev.Gadget, ev.Error)
		case ev.Op == OpExecute || ev.Op == OpGet:
			fmt.Fprintf(&buf, "  [%d] %s %s %s -> %s\n", ev.Step, ev.Op, ev.Function, ev.Gadget, ev.Output)
		default:
			fmt.Fprintf(&buf, "  [%d] %s %s\n", ev.Step, ev.Op, ev.Widget)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertResultCount:
		return assertResultCount(result.Trace, a, actx)
	case AssertHistory:
		return assertHistory(result.Trace, a, actx)
	case AssertOutputEqual:
		return assertOutputs(result.Trace, a, true)
	case AssertOutputDiffers:
		return assertOutputs(result.Trace, a, false)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertResultCount(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	n, err := actx.Store.CountFunctionResults(actx.Ctx)
	if err != nil {
		return fmt.Errorf("count results: %w", err)
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertResultCount,
			Expected: fmt.Sprintf("%d stored results", a.Count),
			Actual:   fmt.Sprintf("%d stored results", n),
			Trace:    trace,
		}
	}
	return nil
}

func assertHistory(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	results, err := actx.Engine.History(actx.Ctx, a.Gadget, 0)
	if err != nil {
		return fmt.Errorf("history for %q: %w", a.Gadget, err)
	}
	if len(results) != a.Count {
		return &AssertionError{
			Type:     AssertHistory,
			Expected: fmt.Sprintf("%d results for gadget %q", a.Count, a.Gadget),
			Actual:   fmt.Sprintf("%d results", len(results)),
			Trace:    trace,
		}
	}
	return nil
}

func assertOutputs(trace []TraceEvent, a Assertion, equal bool) error {
	typ, want := AssertOutputDiffers, "different"
	if equal {
		typ, want = AssertOutputEqual, "equal"
	}

	outputs := make([]string, len(a.Steps))
	for i, step := range a.Steps {
		if step < 0 || step >= len(trace) {
			return fmt.Errorf("%s: step %d out of range", typ, step)
		}
		if trace[step].Output == "" {
			return fmt.Errorf("%s: step %d produced no output", typ, step)
		}
		outputs[i] = trace[step].Output
	}

	for i := 0; i < len(outputs); i++ {
		for j := i + 1; j < len(outputs); j++ {
			same := outputs[i] == outputs[j]
			if same != equal {
				return &AssertionError{
					Type:     typ,
					Expected: fmt.Sprintf("steps %d and %d outputs %s", a.Steps[i], a.Steps[j], want),
					Actual:   fmt.Sprintf("%q vs %q", outputs[i], outputs[j]),
					Trace:    trace,
				}
			}
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion, steps int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertResultCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for result_count", index)
		}
	case AssertHistory:
		if a.Gadget == "" {
			return fmt.Errorf("assertions[%d]: gadget is required for history", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for history", index)
		}
	case AssertOutputEqual, AssertOutputDiffers:
		if len(a.Steps) < 2 {
			return fmt.Errorf("assertions[%d]: at least two steps are required for %s", index, a.Type)
		}
		for _, s := range a.Steps {
			if s < 0 || s >= steps {
				return fmt.Errorf("assertions[%d]: step %d out of range", index, s)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
