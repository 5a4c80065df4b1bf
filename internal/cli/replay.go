package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/bfe/internal/runner"
	"github.com/roach88/bfe/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // specific run (empty = all)
}

// ReplayResult holds the outcome of a replay.
type ReplayResult struct {
	Runs       []*runner.Verification `json:"runs"`
	Replayed   int                    `json:"replayed"`
	Mismatched int                    `json:"mismatched"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded runs and verify determinism",
		Long: `Re-execute recorded runs with their stored program, settings and
input, and compare the result with what was recorded.

Exit codes:
  0 - Every replayed run matched
  1 - At least one run diverged
  2 - Command error (database not found, unknown run, etc.)

Examples:
  bfe replay --db runs.db
  bfe replay --db runs.db --run 0190c6b2-...
  bfe replay --db runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay only this run")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	logger := opts.logger()

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.GetRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrRunNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx, 0)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read runs", err)
		}
	}

	result := ReplayResult{Runs: make([]*runner.Verification, 0, len(runs))}
	for _, run := range runs {
		logger.Debug("replaying run", "id", run.ID, "seq", run.Seq)
		v, err := runner.Replay(ctx, run)
		if err != nil {
			return WrapExitError(ExitCommandError, "replay failed", err)
		}
		result.Runs = append(result.Runs, v)
		result.Replayed++
		if !v.Match {
			result.Mismatched++
		}
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Mismatched > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    "E_REPLAY_MISMATCH",
				Message: fmt.Sprintf("%d run(s) diverged", result.Mismatched),
			}
		}
		if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd.OutOrStdout(), result)
	}

	if result.Mismatched > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d run(s) diverged", result.Mismatched))
	}
	return nil
}

func outputReplayText(w io.Writer, result ReplayResult) {
	if result.Replayed == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	for _, v := range result.Runs {
		if v.Match {
			fmt.Fprintf(w, "✓ #%d %s\n", v.Seq, v.RunID)
			continue
		}
		fmt.Fprintf(w, "✗ #%d %s\n", v.Seq, v.RunID)
		for _, d := range v.Diffs {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Replay Summary: %d replayed, %d diverged\n", result.Replayed, result.Mismatched)
}
