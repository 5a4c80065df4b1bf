// Package runner executes one program under a given set of machine settings
// and captures everything a caller needs afterwards: the output, the input
// the program consumed, the final report and the data tape.
//
// The CLI, the scenario harness and replay all execute through Run, so a
// program behaves the same whichever surface started it.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/roach88/bfe/internal/config"
	"github.com/roach88/bfe/internal/engine"
	"github.com/roach88/bfe/internal/tape"
)

// Error kinds for failures that are not engine conditions.
const (
	ErrorKindMaxSteps  = "MAX_STEPS_EXCEEDED"
	ErrorKindCancelled = "CANCELLED"
	ErrorKindIO        = "IO_ERROR"
)

// Settings describe the machine a program runs on.
type Settings struct {
	MemorySize     int
	CursorRollover bool
	ValueRollover  bool
	Strict         bool
	MaxSteps       int
}

// DefaultSettings returns the settings of an unconfigured machine.
func DefaultSettings() Settings {
	return FromConfig(config.Default())
}

// FromConfig converts validated config to settings.
func FromConfig(cfg config.Config) Settings {
	return Settings{
		MemorySize:     cfg.Memory.Size,
		CursorRollover: cfg.Memory.CursorRollover,
		ValueRollover:  cfg.Memory.ValueRollover,
		Strict:         cfg.Strict,
		MaxSteps:       cfg.MaxSteps,
	}
}

// Request is one execution.
type Request struct {
	Name     string
	Program  []byte
	Settings Settings

	// Input is the `,` device. Nil means no input.
	Input engine.Input

	// Output, if set, receives program output as it is produced in
	// addition to the capture in Result.
	Output io.Writer

	Tracer func(engine.Step)
	Logger *slog.Logger
}

// Result is the outcome of an execution. Err holds the error that stopped
// the program, if any; it is not returned by Run.
type Result struct {
	Name     string
	Program  []byte
	Settings Settings

	Output []byte
	Input  string
	Report engine.Report
	Err    error
	Memory *tape.Tape
}

// Run executes req.Program to completion.
//
// Returns an error only when the machine cannot be built. Failures during
// execution are reported in Result.Err.
func Run(ctx context.Context, req Request) (*Result, error) {
	if req.Settings.MaxSteps < 0 {
		return nil, fmt.Errorf("max steps must be >= 0, got %d", req.Settings.MaxSteps)
	}

	mem, err := tape.New(req.Settings.MemorySize,
		tape.WithCursorRollover(req.Settings.CursorRollover),
		tape.WithValueRollover(req.Settings.ValueRollover),
	)
	if err != nil {
		return nil, fmt.Errorf("memory size %d: %w", req.Settings.MemorySize, err)
	}

	var captured bytes.Buffer
	var out io.Writer = &captured
	if req.Output != nil {
		out = io.MultiWriter(&captured, req.Output)
	}

	opts := []engine.Option{
		engine.WithOutput(out),
		engine.WithMaxSteps(req.Settings.MaxSteps),
	}

	var rec *recorder
	if req.Input != nil {
		rec = &recorder{input: req.Input}
		opts = append(opts, engine.WithInput(rec))
	}
	if req.Settings.Strict {
		opts = append(opts, engine.WithStrict())
	}
	if req.Tracer != nil {
		opts = append(opts, engine.WithTracer(req.Tracer))
	}
	if req.Logger != nil {
		opts = append(opts, engine.WithLogger(req.Logger))
	}

	e := engine.New(mem, opts...)
	runErr := e.Execute(ctx, req.Program)

	res := &Result{
		Name:     req.Name,
		Program:  req.Program,
		Settings: req.Settings,
		Output:   captured.Bytes(),
		Report:   e.Report(),
		Err:      runErr,
		Memory:   e.Memory(),
	}
	if rec != nil {
		res.Input = rec.String()
	}
	return res, nil
}

// ErrorKind classifies err for storage and display: the condition kind for
// engine conditions, otherwise one of the ErrorKind constants. Nil yields "".
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	if kind := engine.ConditionOf(err); kind != engine.CondNone {
		return string(kind)
	}
	if engine.IsStepsExceededError(err) {
		return ErrorKindMaxSteps
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindCancelled
	}
	return ErrorKindIO
}

// Conditions returns the report's condition counts keyed by kind name.
func (r *Result) Conditions() map[string]int {
	out := make(map[string]int, len(r.Report.Conditions))
	for k, v := range r.Report.Conditions {
		out[string(k)] = v
	}
	return out
}

// recorder passes reads through to an input device and keeps every
// character it returned.
type recorder struct {
	mu    sync.Mutex
	input engine.Input
	buf   strings.Builder
}

func (r *recorder) ReadChar() (rune, error) {
	c, err := r.input.ReadChar()
	if err != nil {
		return c, err
	}

	r.mu.Lock()
	r.buf.WriteRune(c)
	r.mu.Unlock()
	return c, nil
}

func (r *recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}
