package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/gizmo/internal/engine"
	"github.com/roach88/gizmo/internal/ir"
	"github.com/roach88/gizmo/internal/resolver"
	"github.com/roach88/gizmo/internal/store"
	"github.com/roach88/gizmo/internal/testutil"
)

// Harness holds the per-scenario engine and store.
type Harness struct {
	store     *store.Store
	engine    *engine.Engine
	inventory *engine.Inventory
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
//  1. Create fresh in-memory database
//  2. Store widgets, then create gadgets through the inventory
//  3. Execute steps, checking each expect clause
//  4. Evaluate assertions
//
// Expectation and assertion failures are reported in Result.Errors. The
// returned error is reserved for setup problems and store failures.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(resolver.New(st, st), st,
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithTokenGenerator(testutil.NewSequenceTokenGenerator(scenario.Token)),
		engine.WithLogger(logger),
	)

	h := &Harness{
		store:     st,
		engine:    eng,
		inventory: engine.NewInventory(st, logger),
	}

	ctx := context.Background()
	if err := h.seed(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to seed inventory: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	actx := &AssertionContext{Ctx: ctx, Store: st, Engine: eng}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) seed(ctx context.Context, scenario *Scenario) error {
	for _, w := range scenario.Widgets {
		if _, err := h.inventory.CreateWidget(ctx, ir.Widget{Name: w.Name, Parts: nonNil(w.Parts)}); err != nil {
			return fmt.Errorf("widget %q: %w", w.Name, err)
		}
	}
	for _, g := range scenario.Gadgets {
		gadget := ir.Gadget{Name: g.Name, Widgets: nonNil(g.Widgets), Functions: nonNil(g.Functions)}
		if _, err := h.inventory.CreateGadget(ctx, gadget); err != nil {
			return fmt.Errorf("gadget %q: %w", g.Name, err)
		}
	}
	return nil
}

// executeStep runs one step and appends its trace event. Domain errors are
// recorded in the trace; only store failures are returned.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	ev := TraceEvent{Step: i, Op: step.Kind()}

	var err error
	switch ev.Op {
	case OpExecute:
		ev.Function, ev.Gadget = step.Execute.Name, step.Execute.Gadget
		var r ir.FunctionResult
		r, err = h.engine.Execute(ctx, ir.ExecuteRequest{Name: step.Execute.Name, Gadget: step.Execute.Gadget})
		if err == nil {
			fillResult(&ev, r)
		}

	case OpGet:
		token := step.Get.Token
		if step.Get.Step != nil {
			token = result.Trace[*step.Get.Step].Token
		}
		var r ir.FunctionResult
		r, err = h.engine.GetByToken(ctx, token)
		if err == nil {
			fillResult(&ev, r)
		} else {
			ev.Token = token
		}

	case OpPutWidget:
		ev.Widget = step.PutWidget.Name
		err = h.store.PutWidget(ctx, ir.Widget{Name: step.PutWidget.Name, Parts: nonNil(step.PutWidget.Parts)})

	case OpDeleteWidget:
		ev.Widget = step.DeleteWidget
		err = h.inventory.DeleteWidget(ctx, step.DeleteWidget)
	}

	if err != nil {
		code := engine.CodeOf(err)
		if code == "" {
			return err
		}
		ev.Error = string(code)
	}
	result.AddTrace(ev)

	checkExpect(i, step.Expect, ev, result)
	return nil
}

func fillResult(ev *TraceEvent, r ir.FunctionResult) {
	ev.Function = r.Name
	ev.Gadget = r.Gadget
	ev.Token = r.Token
	ev.Output = r.Output
	ev.Start = r.Start.UTC().Format(time.RFC3339Nano)
}

// checkExpect compares a step outcome against its expect clause. A step
// without expect must not fail.
func checkExpect(i int, expect *Expect, ev TraceEvent, result *Result) {
	if expect == nil || expect.Error == "" {
		if ev.Error != "" {
			result.AddError(fmt.Sprintf("steps[%d]: unexpected error %s", i, ev.Error))
			return
		}
	}
	if expect == nil {
		return
	}

	if expect.Error != "" && ev.Error != expect.Error {
		got := ev.Error
		if got == "" {
			got = "success"
		}
		result.AddError(fmt.Sprintf("steps[%d]: expected error %s, got %s", i, expect.Error, got))
		return
	}
	if expect.Output != "" && ev.Output != expect.Output {
		result.AddError(fmt.Sprintf("steps[%d]: expected output %q, got %q", i, expect.Output, ev.Output))
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
