package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceOf(ops ...string) []TraceEvent {
	trace := make([]TraceEvent, len(ops))
	for i, op := range ops {
		trace[i] = TraceEvent{Seq: i + 1, Op: op}
	}
	return trace
}

func TestAssertTraceContains(t *testing.T) {
	trace := traceOf("+", "[", "-", "]")

	assert.NoError(t, assertTraceContains(trace, Assertion{Op: "-"}))

	err := assertTraceContains(trace, Assertion{Op: "."})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
}

func TestAssertTraceOrder(t *testing.T) {
	trace := traceOf("+", "[", "-", "]", "[", ".")

	assert.NoError(t, assertTraceOrder(trace, Assertion{Ops: []string{"+", "-", "."}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Ops: []string{"[", "]"}}), "first occurrences")

	err := assertTraceOrder(trace, Assertion{Ops: []string{".", "+"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "should be before")

	err = assertTraceOrder(trace, Assertion{Ops: []string{"+", ","}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing op")
}

func TestAssertTraceCount(t *testing.T) {
	trace := traceOf("+", "+", "-", "+")

	assert.NoError(t, assertTraceCount(trace, Assertion{Op: "+", Count: 3}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Op: ".", Count: 0}))

	err := assertTraceCount(trace, Assertion{Op: "-", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 times")
}

func TestEvaluateAssertion_UnknownType(t *testing.T) {
	assert.Error(t, evaluateAssertion(nil, Assertion{Type: "nope"}))
}
