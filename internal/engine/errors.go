package engine

import (
	"errors"
	"fmt"
)

// ConditionKind categorizes a non-fatal event observed while executing.
//
// Conditions include:
//   - Unrecognized symbol: program byte outside the instruction set
//   - Empty loop stack: `]` with nothing to return to
//   - Cursor out of range: a cursor left its tape with rollover disabled
//   - Unterminated loop or comment: a forward scan ran off the program
//   - Input exhausted: the input device reported EOF
//   - Absent cell: a memory dump addressed a position past the tape
type ConditionKind string

const (
	// CondNone means the step completed without a condition.
	CondNone ConditionKind = ""

	// CondUnrecognizedSymbol marks an inert program byte. Never fatal.
	CondUnrecognizedSymbol ConditionKind = "UNRECOGNIZED_SYMBOL"

	// CondEmptyLoopStack marks a `]` executed with an empty loop stack.
	CondEmptyLoopStack ConditionKind = "EMPTY_LOOP_STACK"

	// CondDataCursorOutOfRange marks a data cursor outside the memory tape.
	CondDataCursorOutOfRange ConditionKind = "DATA_CURSOR_OUT_OF_RANGE"

	// CondProgramCursorOutOfRange marks a negative program cursor. Execution
	// terminates.
	CondProgramCursorOutOfRange ConditionKind = "PROGRAM_CURSOR_OUT_OF_RANGE"

	// CondUnterminatedLoop marks a zero-guard skip that found no matching `]`.
	CondUnterminatedLoop ConditionKind = "UNTERMINATED_LOOP"

	// CondUnterminatedComment marks a block comment with no closing `*`.
	CondUnterminatedComment ConditionKind = "UNTERMINATED_COMMENT"

	// CondInputExhausted marks a `,` that hit EOF. The cell is left unchanged.
	CondInputExhausted ConditionKind = "INPUT_EXHAUSTED"

	// CondAbsentCell marks a memory dump position at or beyond the tape size.
	// Never fatal.
	CondAbsentCell ConditionKind = "ABSENT_CELL"
)

// StrictKinds lists the conditions WithStrict makes fatal.
var StrictKinds = []ConditionKind{
	CondEmptyLoopStack,
	CondDataCursorOutOfRange,
	CondProgramCursorOutOfRange,
	CondUnterminatedLoop,
	CondUnterminatedComment,
	CondInputExhausted,
}

// RuntimeError is returned when a condition configured as fatal occurs.
type RuntimeError struct {
	// Kind is the condition that stopped execution.
	Kind ConditionKind

	// Message is a human-readable description.
	Message string

	// ProgramCursor is the position of the instruction that raised it.
	ProgramCursor int

	// DataCursor is the data cursor at the time.
	DataCursor int
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s (pc=%d, dp=%d)", e.Kind, e.Message, e.ProgramCursor, e.DataCursor)
}

// IsConditionError reports whether err is a RuntimeError of the given kind.
// Uses errors.As to handle wrapped errors.
func IsConditionError(err error, kind ConditionKind) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}

// ConditionOf returns the kind carried by err, or CondNone.
func ConditionOf(err error) ConditionKind {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Kind
	}
	return CondNone
}

func describe(kind ConditionKind) string {
	switch kind {
	case CondUnrecognizedSymbol:
		return "byte is not an instruction"
	case CondEmptyLoopStack:
		return "loop close with empty loop stack"
	case CondDataCursorOutOfRange:
		return "data cursor outside memory"
	case CondProgramCursorOutOfRange:
		return "program cursor is negative"
	case CondUnterminatedLoop:
		return "no matching loop close before end of program"
	case CondUnterminatedComment:
		return "block comment not closed before end of program"
	case CondInputExhausted:
		return "input device reported end of input"
	case CondAbsentCell:
		return "memory dump addressed a cell past the end of memory"
	}
	return string(kind)
}
