// Package harness provides conformance testing for programs.
//
// A scenario names a program, the input it is given and the machine it runs
// on, then states what must hold afterwards. The harness executes it through
// the runner package, exactly as `bfe run` would, and checks the result.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	program: "++[>+<-]"        # or program_file: ../programs/x.bf
//	input: "abc"
//	machine:
//	  memory_size: 16
//	  cursor_rollover: false
//	  strict: true
//	  max_steps: 1000
//	expect:
//	  output: "..."
//	  error: EMPTY_LOOP_STACK
//	  cells: { 0: 0, 1: 2 }
//	  data_cursor: 1
//	  loop_depth: 0
//	  conditions: { INPUT_EXHAUSTED: 1 }
//	assertions:
//	  - type: trace_count
//	    op: "+"
//	    count: 2
//
// Every expect field is optional; only the fields present are checked.
// Unknown fields are rejected so typos fail loudly.
//
// # Assertion Types
//
//   - trace_contains: the instruction executed at least once
//   - trace_order: the instructions first executed in the given order
//   - trace_count: the instruction executed exactly N times
//
// # Golden Snapshots
//
// Snapshot renders a result as indented JSON with a fixed field order.
// Golden files live in a golden/ directory next to the scenarios and are
// named after the scenario. Regenerate with:
//
//	go test ./internal/harness -update
//	bfe test ./internal/harness/testdata/scenarios --update
//
// Input and expected output are NFC-normalized before use, so scenario
// files may be written with either composed or decomposed characters.
package harness
