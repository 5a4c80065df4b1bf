package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/bfe/internal/console"
	"github.com/roach88/bfe/internal/engine"
	"github.com/roach88/bfe/internal/runner"
)

// Harness runs scenarios.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a default harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return New(nil).Run(ctx, scenario)
}

// Run executes a scenario and evaluates its expectations.
//
// Returns an error only if the machine cannot be built; a program that
// fails at runtime is a result, checked against expect.error.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()

	res, err := runner.Run(ctx, runner.Request{
		Name:     scenario.Name,
		Program:  scenario.Source(),
		Settings: scenario.Machine.Settings(),
		Input:    console.NewReader(strings.NewReader(scenario.NormalizedInput())),
		Tracer: func(s engine.Step) {
			result.Trace = append(result.Trace, TraceEvent{
				Seq:           s.Seq,
				ProgramCursor: s.ProgramCursor,
				Op:            s.Op.Symbol(),
				Status:        s.Outcome.Status.String(),
				Condition:     string(s.Outcome.Condition),
				DataCursor:    s.DataCursor,
				LoopDepth:     s.LoopDepth,
			})
		},
		Logger: h.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	result.Run = res

	h.logger.Debug("scenario executed",
		"scenario", scenario.Name,
		"steps", res.Report.Steps,
		"error", runner.ErrorKind(res.Err),
	)

	for _, msg := range Evaluate(scenario, result) {
		result.AddError(msg)
	}
	return result, nil
}
