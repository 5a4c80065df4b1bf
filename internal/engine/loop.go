package engine

// openLoop handles `[` at program position pc.
//
// A non-zero guard pushes pc so the matching `]` can return here. A zero
// guard skips the body. A guard cell that cannot be read (data cursor out
// of range) is treated as zero.
func (e *Engine) openLoop(pc int) Outcome {
	guard, err := e.memory.Read()
	if err != nil {
		e.skipLoop()
		return Outcome{Op: OpLoopOpen, Status: StatusOutOfRange, Condition: CondDataCursorOutOfRange}
	}

	if guard != 0 {
		e.loops = append(e.loops, pc)
		return Outcome{Op: OpLoopOpen, Status: StatusOK}
	}

	if !e.skipLoop() {
		return Outcome{Op: OpLoopOpen, Status: StatusSkipped, Condition: CondUnterminatedLoop}
	}
	return Outcome{Op: OpLoopOpen, Status: StatusSkipped}
}

// skipLoop scans forward from the `[` under the program cursor and stops
// on its matching `]`, leaving the auto-advance to step past it.
//
// The nesting counter starts at -1 because the scan reads the opening `[`
// itself first. The scan stops on a `]` seen while the counter is 0.
// Returns false if the program ended first; the cursor is then past the
// last byte and the dispatch loop terminates.
func (e *Engine) skipLoop() bool {
	depth := -1
	for {
		v, err := e.program.Read()
		if err != nil {
			return false
		}
		if v == int(OpLoopClose) && depth == 0 {
			return true
		}

		switch v {
		case int(OpLoopOpen):
			depth++
		case int(OpLoopClose):
			depth--
		}
		_ = e.program.Advance()
	}
}

// closeLoop handles `]`. It pops the most recent `[` position and seeks one
// before it, so the auto-advance lands on the `[` and the guard is tested
// again. An empty stack makes `]` a no-op.
func (e *Engine) closeLoop() Outcome {
	n := len(e.loops)
	if n == 0 {
		return Outcome{Op: OpLoopClose, Status: StatusSkipped, Condition: CondEmptyLoopStack}
	}

	pos := e.loops[n-1]
	e.loops = e.loops[:n-1]
	e.program.Seek(pos - 1)

	return Outcome{Op: OpLoopClose, Status: StatusOK}
}
