package engine

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	memoryHeader = "\n***** MEMORY *****\n\n"
	debugHeader  = "\n***** DEBUG *****\n\n"

	// AbsentMarker is printed by `?` for positions past the end of memory.
	AbsentMarker = "-"
)

// FormatCell renders a cell the way `.` prints it: printable values
// (32..176) and newline as the character, anything else as \xNN.
func FormatCell(v int) string {
	if (v >= 32 && v <= 176) || v == '\n' {
		return string(rune(v))
	}
	return fmt.Sprintf(`\x%02x`, v)
}

func (e *Engine) writeCell() (Outcome, error) {
	v, err := e.memory.Read()
	if err != nil {
		return Outcome{Op: OpOutput, Status: StatusOutOfRange, Condition: CondDataCursorOutOfRange}, nil
	}
	if _, err := io.WriteString(e.output, FormatCell(v)); err != nil {
		return Outcome{Op: OpOutput}, fmt.Errorf("write output: %w", err)
	}
	return Outcome{Op: OpOutput, Status: StatusOK}, nil
}

// readInput handles `,`. Blocks until the input device yields a character.
func (e *Engine) readInput() (Outcome, error) {
	if e.input == nil {
		return Outcome{Op: OpInput, Status: StatusSkipped, Condition: CondInputExhausted}, nil
	}

	r, err := e.input.ReadChar()
	if errors.Is(err, io.EOF) {
		return Outcome{Op: OpInput, Status: StatusSkipped, Condition: CondInputExhausted}, nil
	}
	if err != nil {
		return Outcome{Op: OpInput}, fmt.Errorf("read input: %w", err)
	}

	return e.memoryOutcome(OpInput, e.memory.Write(int(r))), nil
}

// comment handles `/`.
//
//	//  skips to the next newline (the newline itself is stepped over)
//	/*  skips to the next `*` and the byte after it; no nesting
//
// Any other following byte is stepped over with the `/`, so a lone `/`
// swallows the byte after it.
func (e *Engine) comment() Outcome {
	_ = e.program.Advance()

	v, err := e.program.Read()
	if err != nil {
		return Outcome{Op: OpComment, Status: StatusSkipped}
	}

	switch v {
	case '/':
		for {
			v, err := e.program.Read()
			if err != nil || v == '\n' {
				break
			}
			_ = e.program.Advance()
		}
		return Outcome{Op: OpComment, Status: StatusOK}

	case '*':
		_ = e.program.Advance()
		for {
			v, err := e.program.Read()
			if err != nil {
				return Outcome{Op: OpComment, Status: StatusSkipped, Condition: CondUnterminatedComment}
			}
			if v == '*' {
				break
			}
			_ = e.program.Advance()
		}
		_ = e.program.Advance()
		return Outcome{Op: OpComment, Status: StatusOK}
	}

	return Outcome{Op: OpComment, Status: StatusSkipped}
}

// dumpMemory handles `?start<delim>end`, printing addresses and values
// for [start, end). The program cursor is left on the first byte after the
// end literal, so the auto-advance steps over that byte.
func (e *Engine) dumpMemory() (Outcome, error) {
	_ = e.program.Advance()
	start := e.pullNumber()
	_ = e.program.Advance()
	end := e.pullNumber()

	var b strings.Builder
	b.WriteString(memoryHeader)
	for i := start; i < end; i++ {
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('\t')
	}
	b.WriteByte('\n')

	absent := false
	for i := start; i < end; i++ {
		if v, ok := e.memory.ReadAt(i); ok {
			b.WriteString(strconv.Itoa(v))
		} else {
			b.WriteString(AbsentMarker)
			absent = true
		}
		b.WriteByte('\t')
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(e.output, b.String()); err != nil {
		return Outcome{Op: OpDumpMemory}, fmt.Errorf("write memory dump: %w", err)
	}

	if absent {
		return Outcome{Op: OpDumpMemory, Status: StatusOutOfRange, Condition: CondAbsentCell}, nil
	}
	return Outcome{Op: OpDumpMemory, Status: StatusOK}, nil
}

// pullNumber consumes decimal digits from the program cursor onward and
// returns their value. No digits yields 0. The cursor is left on the first
// non-digit (or past the end).
func (e *Engine) pullNumber() int {
	var digits strings.Builder
	digits.WriteByte('0')
	for {
		v, err := e.program.Read()
		if err != nil || v < '0' || v > '9' {
			break
		}
		digits.WriteByte(byte(v))
		_ = e.program.Advance()
	}

	n, err := strconv.Atoi(digits.String())
	if err != nil {
		e.logger.Debug("numeric literal out of range", "literal", digits.String(), "error", err)
		return 0
	}
	return n
}

// dumpState handles `^`.
func (e *Engine) dumpState(pc int) (Outcome, error) {
	_, err := fmt.Fprintf(e.output, "%s%16s %d\n%16s %d\n",
		debugHeader,
		"Program pointer:", pc,
		"Memory pointer:", e.memory.Cursor(),
	)
	if err != nil {
		return Outcome{Op: OpDumpState}, fmt.Errorf("write debug state: %w", err)
	}
	return Outcome{Op: OpDumpState, Status: StatusOK}, nil
}
