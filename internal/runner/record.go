package runner

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/bfe/internal/console"
	"github.com/roach88/bfe/internal/program"
	"github.com/roach88/bfe/internal/store"
)

// Record converts the result to a run log entry with the given ID.
func (r *Result) Record(id string) store.Run {
	run := store.Run{
		ID:            id,
		ProgramName:   r.Name,
		ProgramHash:   program.Hash(r.Program),
		Program:       r.Program,
		Input:         r.Input,
		Output:        r.Output,
		Steps:         r.Report.Steps,
		ProgramCursor: r.Report.ProgramCursor,
		DataCursor:    r.Report.DataCursor,
		LoopDepth:     r.Report.LoopDepth,
		Conditions:    r.Conditions(),
		ErrorKind:     ErrorKind(r.Err),
		Machine: store.Machine{
			MemorySize:     r.Settings.MemorySize,
			CursorRollover: r.Settings.CursorRollover,
			ValueRollover:  r.Settings.ValueRollover,
			Strict:         r.Settings.Strict,
			MaxSteps:       r.Settings.MaxSteps,
		},
	}
	if r.Err != nil {
		run.Error = r.Err.Error()
	}
	return run
}

// Verification is the outcome of replaying a stored run.
type Verification struct {
	RunID string   `json:"run_id"`
	Seq   int64    `json:"seq"`
	Match bool     `json:"match"`
	Diffs []string `json:"diffs,omitempty"`
}

// Replay re-executes a stored run with its recorded input and settings and
// compares the new result with what was stored.
func Replay(ctx context.Context, run store.Run) (*Verification, error) {
	res, err := Run(ctx, Request{
		Name:    run.ProgramName,
		Program: run.Program,
		Input:   console.NewReader(strings.NewReader(run.Input)),
		Settings: Settings{
			MemorySize:     run.Machine.MemorySize,
			CursorRollover: run.Machine.CursorRollover,
			ValueRollover:  run.Machine.ValueRollover,
			Strict:         run.Machine.Strict,
			MaxSteps:       run.Machine.MaxSteps,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", run.ID, err)
	}

	got := res.Record(run.ID)
	v := &Verification{RunID: run.ID, Seq: run.Seq}

	if string(got.Output) != string(run.Output) {
		v.Diffs = append(v.Diffs, fmt.Sprintf("output: stored %q, replayed %q", run.Output, got.Output))
	}
	if got.Input != run.Input {
		v.Diffs = append(v.Diffs, fmt.Sprintf("input: stored %q, replayed consumed %q", run.Input, got.Input))
	}
	compareInt := func(field string, stored, replayed int) {
		if stored != replayed {
			v.Diffs = append(v.Diffs, fmt.Sprintf("%s: stored %d, replayed %d", field, stored, replayed))
		}
	}
	compareInt("steps", run.Steps, got.Steps)
	compareInt("program_cursor", run.ProgramCursor, got.ProgramCursor)
	compareInt("data_cursor", run.DataCursor, got.DataCursor)
	compareInt("loop_depth", run.LoopDepth, got.LoopDepth)

	if got.ErrorKind != run.ErrorKind {
		v.Diffs = append(v.Diffs, fmt.Sprintf("error: stored %q, replayed %q", run.ErrorKind, got.ErrorKind))
	}

	for _, k := range sortedKeys(run.Conditions, got.Conditions) {
		compareInt("conditions."+k, run.Conditions[k], got.Conditions[k])
	}

	v.Match = len(v.Diffs) == 0
	return v, nil
}

func sortedKeys(a, b map[string]int) []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
