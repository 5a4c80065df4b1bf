package engine

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/bfe/internal/tape"
)

// Input is the device `,` reads from. ReadChar must return exactly one
// character per call and io.EOF once no more input will arrive.
// Implemented by console.Terminal, console.Reader and testutil.ScriptedInput.
type Input interface {
	ReadChar() (rune, error)
}

// contextCheckInterval is how many steps Run executes between context checks.
const contextCheckInterval = 1024

// Status is the result variant of a single step.
type Status int

const (
	// StatusOK means the instruction took effect.
	StatusOK Status = iota

	// StatusSkipped means the byte or instruction was a no-op.
	StatusSkipped

	// StatusOutOfRange means a cursor or address fell outside its tape.
	StatusOutOfRange
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	case StatusOutOfRange:
		return "out_of_range"
	}
	return "unknown"
}

// Outcome describes what one step did.
type Outcome struct {
	Op        Op
	Status    Status
	Condition ConditionKind
}

// Step is passed to the tracer after every executed byte.
type Step struct {
	Seq           int
	ProgramCursor int
	Op            Op
	Outcome       Outcome
	DataCursor    int
	Cell          int
	CellPresent   bool
	LoopDepth     int
}

// Report summarizes the current or last execution.
type Report struct {
	Steps         int                   `json:"steps"`
	ProgramCursor int                   `json:"program_cursor"`
	DataCursor    int                   `json:"data_cursor"`
	LoopDepth     int                   `json:"loop_depth"`
	Conditions    map[ConditionKind]int `json:"conditions"`
}

// Engine executes programs against a persistent data tape.
//
// Thread-safety model: none. One program runs to completion before the
// next Execute call; the data tape is shared across calls.
//
// INVARIANTS:
//   - the loop stack is empty when a program is loaded
//   - options are fixed after New
type Engine struct {
	memory  *tape.Tape
	program *tape.Tape
	loops   []int

	output io.Writer
	input  Input
	logger *slog.Logger
	tracer func(Step)

	fatal    map[ConditionKind]bool
	maxSteps int
	quota    *QuotaEnforcer
	report   Report
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutput sets where `.`, `?` and `^` write. Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.output = w
	}
}

// WithInput sets the device `,` reads from. Without one every `,` reports
// CondInputExhausted.
func WithInput(in Input) Option {
	return func(e *Engine) {
		e.input = in
	}
}

// WithLogger sets the logger used for condition diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithTracer registers a function called after every step.
func WithTracer(fn func(Step)) Option {
	return func(e *Engine) {
		e.tracer = fn
	}
}

// WithStrict makes every kind in StrictKinds fatal.
func WithStrict() Option {
	return WithFatal(StrictKinds...)
}

// WithFatal makes the given condition kinds fatal.
// CondUnrecognizedSymbol and CondAbsentCell are ignored: inert bytes and
// absent dump cells are part of the language, not faults.
func WithFatal(kinds ...ConditionKind) Option {
	return func(e *Engine) {
		for _, k := range kinds {
			if k == CondUnrecognizedSymbol || k == CondAbsentCell || k == CondNone {
				continue
			}
			e.fatal[k] = true
		}
	}
}

// WithMaxSteps limits the number of program bytes a single Execute may
// step through. 0 means unlimited.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// New creates an Engine over the given data tape.
// A nil memory gets a default tape of tape.DefaultSize cells with both
// rollover policies enabled.
func New(memory *tape.Tape, opts ...Option) *Engine {
	if memory == nil {
		memory, _ = tape.New(tape.DefaultSize)
	}

	e := &Engine{
		memory: memory,
		output: os.Stdout,
		logger: slog.Default(),
		fatal:  make(map[ConditionKind]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Load(nil)

	return e
}

// Execute loads program and runs it to completion.
func (e *Engine) Execute(ctx context.Context, program []byte) error {
	e.Load(program)
	return e.Run(ctx)
}

// Load replaces the active program, rewinds the program cursor, clears the
// loop stack and resets the report. The data tape is untouched.
func (e *Engine) Load(program []byte) {
	e.program = tape.Load(program)
	e.program.Seek(0)
	e.loops = e.loops[:0]
	e.quota = NewQuotaEnforcer(e.maxSteps)
	e.report = Report{Conditions: make(map[ConditionKind]int)}
}

// Run steps the loaded program until the program cursor leaves the program.
//
// Returns nil when the program ran off its end, a *RuntimeError for a
// fatal condition, a *StepsExceededError when the quota is exhausted, the
// context error on cancellation, or an I/O error from the devices.
// Cancellation is observed between instructions; a `,` waiting on input
// is not interrupted.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Debug("program started", "size", e.program.Size(), "max_steps", e.maxSteps)

	for !e.Done() {
		if e.report.Steps%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if _, err := e.Step(); err != nil {
			return err
		}
	}

	if e.program.Cursor() < 0 {
		if err := e.observe(e.program.Cursor(), CondProgramCursorOutOfRange); err != nil {
			return err
		}
	}

	e.logger.Debug("program finished", "steps", e.report.Steps, "pc", e.program.Cursor(), "dp", e.memory.Cursor())
	return nil
}

// Done reports whether the program cursor has left the program.
func (e *Engine) Done() bool {
	return !e.program.InRange()
}

// Step executes the byte under the program cursor and advances past it.
// Calling Step when Done is true returns a StatusOutOfRange outcome and
// changes nothing.
func (e *Engine) Step() (Outcome, error) {
	pc := e.program.Cursor()
	v, err := e.program.Read()
	if err != nil {
		out := Outcome{Op: OpNone, Status: StatusOutOfRange}
		if pc < 0 {
			out.Condition = CondProgramCursorOutOfRange
		}
		return out, nil
	}

	if err := e.quota.Check(); err != nil {
		return Outcome{Op: OpNone}, err
	}

	var out Outcome
	if op, ok := Decode(v); ok {
		out, err = e.dispatch(op, pc)
		if err != nil {
			return out, err
		}
	} else {
		out = Outcome{Op: OpNone, Status: StatusSkipped, Condition: CondUnrecognizedSymbol}
	}

	_ = e.program.Advance()
	e.report.Steps++

	if e.tracer != nil {
		cell, present := e.memory.ReadAt(e.memory.Cursor())
		e.tracer(Step{
			Seq:           e.report.Steps,
			ProgramCursor: pc,
			Op:            out.Op,
			Outcome:       out,
			DataCursor:    e.memory.Cursor(),
			Cell:          cell,
			CellPresent:   present,
			LoopDepth:     len(e.loops),
		})
	}

	return out, e.observe(pc, out.Condition)
}

// dispatch runs one decoded instruction. The program cursor is on the
// instruction's byte; Step advances it afterwards.
func (e *Engine) dispatch(op Op, pc int) (Outcome, error) {
	switch op {
	case OpRight:
		return e.memoryOutcome(op, e.memory.Advance()), nil
	case OpLeft:
		return e.memoryOutcome(op, e.memory.Retreat()), nil
	case OpIncrement:
		return e.memoryOutcome(op, e.memory.IncrementCell()), nil
	case OpDecrement:
		return e.memoryOutcome(op, e.memory.DecrementCell()), nil
	case OpOutput:
		return e.writeCell()
	case OpInput:
		return e.readInput()
	case OpLoopOpen:
		return e.openLoop(pc), nil
	case OpLoopClose:
		return e.closeLoop(), nil
	case OpComment:
		return e.comment(), nil
	case OpDumpMemory:
		return e.dumpMemory()
	case OpDumpState:
		return e.dumpState(pc)
	}
	return Outcome{Op: OpNone, Status: StatusSkipped, Condition: CondUnrecognizedSymbol}, nil
}

// memoryOutcome maps a data tape error to an outcome. The tape only
// reports cursor range errors.
func (e *Engine) memoryOutcome(op Op, err error) Outcome {
	if err != nil {
		return Outcome{Op: op, Status: StatusOutOfRange, Condition: CondDataCursorOutOfRange}
	}
	return Outcome{Op: op, Status: StatusOK}
}

// observe counts a condition and returns a RuntimeError if it is fatal.
func (e *Engine) observe(pc int, kind ConditionKind) error {
	if kind == CondNone {
		return nil
	}
	e.report.Conditions[kind]++

	if kind != CondUnrecognizedSymbol {
		e.logger.Debug("condition", "kind", string(kind), "pc", pc, "dp", e.memory.Cursor())
	}

	if !e.fatal[kind] {
		return nil
	}
	return &RuntimeError{
		Kind:          kind,
		Message:       describe(kind),
		ProgramCursor: pc,
		DataCursor:    e.memory.Cursor(),
	}
}

// Memory returns the data tape.
func (e *Engine) Memory() *tape.Tape {
	return e.memory
}

// Program returns the active program tape.
func (e *Engine) Program() *tape.Tape {
	return e.program
}

// LoopStack returns a copy of the saved loop positions, oldest first.
func (e *Engine) LoopStack() []int {
	out := make([]int, len(e.loops))
	copy(out, e.loops)
	return out
}

// Report returns a snapshot of the current execution report.
func (e *Engine) Report() Report {
	r := Report{
		Steps:         e.report.Steps,
		ProgramCursor: e.program.Cursor(),
		DataCursor:    e.memory.Cursor(),
		LoopDepth:     len(e.loops),
		Conditions:    make(map[ConditionKind]int, len(e.report.Conditions)),
	}
	for k, v := range e.report.Conditions {
		r.Conditions[k] = v
	}
	return r
}
