package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingID is returned by WriteRun for a run without an ID.
var ErrMissingID = errors.New("run id is required")

// WriteRun appends a run to the log and returns its seq.
//
// seq is assigned inside the transaction as MAX(seq)+1; run.Seq is ignored.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing an ID that
// already exists returns the stored run's seq and changes nothing.
func (s *Store) WriteRun(ctx context.Context, run Run) (int64, error) {
	if run.ID == "" {
		return 0, fmt.Errorf("write run: %w", ErrMissingID)
	}

	conditions, err := marshalConditions(run.Conditions)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, program_name, program_hash, program, input, output,
		 steps, program_cursor, data_cursor, loop_depth, conditions,
		 error_kind, error,
		 memory_size, cursor_rollover, value_rollover, strict, max_steps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		seq,
		run.ProgramName,
		run.ProgramHash,
		nonNil(run.Program),
		run.Input,
		nonNil(run.Output),
		run.Steps,
		run.ProgramCursor,
		run.DataCursor,
		run.LoopDepth,
		conditions,
		run.ErrorKind,
		run.Error,
		run.Machine.MemorySize,
		run.Machine.CursorRollover,
		run.Machine.ValueRollover,
		run.Machine.Strict,
		run.Machine.MaxSteps,
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("write run: rows affected: %w", err)
	}
	if inserted == 0 {
		if err := tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&seq); err != nil {
			return 0, fmt.Errorf("write run: existing seq: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}

// nonNil keeps NOT NULL BLOB columns from receiving NULL for empty slices.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
