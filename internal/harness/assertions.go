package harness

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/bfe/internal/runner"
)

// AssertionError is returned when a trace assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// Evaluate checks a finished run against the scenario's expect block and
// trace assertions and returns one message per failure.
func Evaluate(scenario *Scenario, result *Result) []string {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	res := result.Run
	exp := scenario.Expect

	if exp.Output != nil {
		want := norm.NFC.String(*exp.Output)
		got := norm.NFC.String(string(res.Output))
		if got != want {
			fail("output: expected %q, got %q", want, got)
		}
	}

	gotKind := runner.ErrorKind(res.Err)
	switch {
	case exp.Error == "" && res.Err != nil:
		fail("unexpected error: %v", res.Err)
	case exp.Error != "" && gotKind != exp.Error:
		fail("error: expected %s, got %q", exp.Error, gotKind)
	}

	for _, addr := range sortedAddresses(exp.Cells) {
		got, ok := res.Memory.ReadAt(addr)
		if !ok {
			fail("cell %d: expected %d, cell is absent", addr, exp.Cells[addr])
			continue
		}
		if got != exp.Cells[addr] {
			fail("cell %d: expected %d, got %d", addr, exp.Cells[addr], got)
		}
	}

	if exp.DataCursor != nil && *exp.DataCursor != res.Report.DataCursor {
		fail("data_cursor: expected %d, got %d", *exp.DataCursor, res.Report.DataCursor)
	}
	if exp.LoopDepth != nil && *exp.LoopDepth != res.Report.LoopDepth {
		fail("loop_depth: expected %d, got %d", *exp.LoopDepth, res.Report.LoopDepth)
	}
	if exp.Steps != nil && *exp.Steps != res.Report.Steps {
		fail("steps: expected %d, got %d", *exp.Steps, res.Report.Steps)
	}

	conditions := res.Conditions()
	kinds := make([]string, 0, len(exp.Conditions))
	for k := range exp.Conditions {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		if conditions[k] != exp.Conditions[k] {
			fail("conditions.%s: expected %d, got %d", k, exp.Conditions[k], conditions[k])
		}
	}

	for _, a := range scenario.Assertions {
		if err := evaluateAssertion(result.Trace, a); err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

func sortedAddresses(cells map[int]int) []int {
	addrs := make([]int, 0, len(cells))
	for a := range cells {
		addrs = append(addrs, a)
	}
	slices.Sort(addrs)
	return addrs
}

func evaluateAssertion(trace []TraceEvent, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(trace, a)
	case AssertTraceCount:
		return assertTraceCount(trace, a)
	}
	return fmt.Errorf("unknown assertion type: %s", a.Type)
}

// assertTraceContains checks that the instruction executed at least once.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range trace {
		if ev.Op == a.Op {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("op %q", a.Op),
		Actual:   "not found in trace",
	}
}

// assertTraceOrder checks that the instructions were first executed in the
// given order. Other instructions may come in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	first := make(map[string]int)
	for i, ev := range trace {
		if _, seen := first[ev.Op]; !seen {
			first[ev.Op] = i
		}
	}

	for _, op := range a.Ops {
		if _, ok := first[op]; !ok {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %s", strings.Join(a.Ops, " ")),
				Actual:   fmt.Sprintf("missing op %q", op),
			}
		}
	}

	for i := 1; i < len(a.Ops); i++ {
		prev, curr := a.Ops[i-1], a.Ops[i]
		if first[prev] >= first[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %s", strings.Join(a.Ops, " ")),
				Actual: fmt.Sprintf("%q (step %d) should be before %q (step %d)",
					prev, first[prev]+1, curr, first[curr]+1),
			}
		}
	}
	return nil
}

// assertTraceCount checks that the instruction executed exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Op == a.Op {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("op %q executed %d times", a.Op, a.Count),
			Actual:   fmt.Sprintf("%d times", count),
		}
	}
	return nil
}
