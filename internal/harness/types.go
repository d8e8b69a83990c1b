package harness

// TraceEvent records the outcome of one step.
type TraceEvent struct {
	Step     int    `json:"step"`
	Op       string `json:"op"`
	Function string `json:"function,omitempty"`
	Gadget   string `json:"gadget,omitempty"`
	Widget   string `json:"widget,omitempty"`
	Token    string `json:"token,omitempty"`
	Output   string `json:"output,omitempty"`
	Start    string `json:"start,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace has exactly one event per step, in step order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
