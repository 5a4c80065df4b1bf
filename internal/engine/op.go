package engine

import "fmt"

// Op is an instruction symbol. The value is the byte that encodes it.
type Op byte

// The closed instruction set.
const (
	OpRight      Op = '>'
	OpLeft       Op = '<'
	OpIncrement  Op = '+'
	OpDecrement  Op = '-'
	OpOutput     Op = '.'
	OpInput      Op = ','
	OpLoopOpen   Op = '['
	OpLoopClose  Op = ']'
	OpComment    Op = '/'
	OpDumpMemory Op = '?'
	OpDumpState  Op = '^'

	// OpNone marks a step whose byte was not an instruction.
	OpNone Op = 0
)

// Decode maps a program cell to its instruction.
// Values outside the instruction set, including values outside the byte
// range, report false.
func Decode(v int) (Op, bool) {
	if v < 0 || v > 0xff {
		return OpNone, false
	}
	switch op := Op(v); op {
	case OpRight, OpLeft, OpIncrement, OpDecrement, OpOutput, OpInput,
		OpLoopOpen, OpLoopClose, OpComment, OpDumpMemory, OpDumpState:
		return op, true
	}
	return OpNone, false
}

// String returns a short mnemonic for traces.
func (op Op) String() string {
	switch op {
	case OpRight:
		return "right"
	case OpLeft:
		return "left"
	case OpIncrement:
		return "inc"
	case OpDecrement:
		return "dec"
	case OpOutput:
		return "out"
	case OpInput:
		return "in"
	case OpLoopOpen:
		return "loop"
	case OpLoopClose:
		return "end"
	case OpComment:
		return "comment"
	case OpDumpMemory:
		return "dump"
	case OpDumpState:
		return "debug"
	case OpNone:
		return "nop"
	}
	return fmt.Sprintf("op(%d)", byte(op))
}

// Symbol returns the instruction's source character.
func (op Op) Symbol() string {
	if op == OpNone {
		return ""
	}
	return string(rune(op))
}
