package harness

import "github.com/roach88/bfe/internal/runner"

// TraceEvent is one executed program byte.
type TraceEvent struct {
	Seq           int    `json:"seq"`
	ProgramCursor int    `json:"pc"`
	Op            string `json:"op"` // instruction symbol, empty for inert bytes
	Status        string `json:"status"`
	Condition     string `json:"condition,omitempty"`
	DataCursor    int    `json:"dp"`
	LoopDepth     int    `json:"loop_depth"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect field and assertion holds.
	Pass bool `json:"pass"`

	// Trace contains every executed byte in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Run is the underlying execution.
	Run *runner.Result `json:"-"`
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
