package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/bfe/internal/engine"
	"github.com/roach88/bfe/internal/runner"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Machine MachineFlags
	Limit   int // stop recording after this many steps; 0 = all
}

// TraceEvent is one executed byte in the trace output.
type TraceEvent struct {
	Seq           int    `json:"seq"`
	ProgramCursor int    `json:"pc"`
	Op            string `json:"op"`
	Status        string `json:"status"`
	Condition     string `json:"condition,omitempty"`
	DataCursor    int    `json:"dp"`
	Cell          *int   `json:"cell"`
	LoopDepth     int    `json:"loop_depth"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Name      string       `json:"name"`
	Timeline  []TraceEvent `json:"timeline"`
	Truncated bool         `json:"truncated"`
	Summary   RunSummary   `json:"summary"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [program-file]",
		Short: "Run a program and show every step",
		Long: `Run a program and print one line per executed byte: the program
cursor, the instruction, its outcome, the data cursor and the cell under
it afterwards, and the loop depth.

Program output is collected and printed after the timeline.

Examples:
  bfe trace prog.bf
  bfe trace -e '+[-]' --memory-size 4
  bfe trace prog.bf --limit 100 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args, cmd)
		},
	}

	addMachineFlags(cmd, &opts.Machine)
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "record at most this many steps (0 = all)")

	return cmd
}

func runTrace(opts *TraceOptions, args []string, cmd *cobra.Command) error {
	name, src, settings, dev, err := prepare(cmd, opts.RootOptions, &opts.Machine, args)
	if err != nil {
		return err
	}
	defer dev.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	result := TraceResult{Name: name, Timeline: []TraceEvent{}}
	tracer := func(s engine.Step) {
		if opts.Limit > 0 && len(result.Timeline) >= opts.Limit {
			result.Truncated = true
			return
		}
		ev := TraceEvent{
			Seq:           s.Seq,
			ProgramCursor: s.ProgramCursor,
			Op:            s.Op.Symbol(),
			Status:        s.Outcome.Status.String(),
			Condition:     string(s.Outcome.Condition),
			DataCursor:    s.DataCursor,
			LoopDepth:     s.LoopDepth,
		}
		if s.CellPresent {
			cell := s.Cell
			ev.Cell = &cell
		}
		result.Timeline = append(result.Timeline, ev)
	}

	res, err := runner.Run(ctx, runner.Request{
		Name:     name,
		Program:  src,
		Settings: settings,
		Input:    dev,
		Tracer:   tracer,
		Logger:   opts.logger(),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build machine", err)
	}
	result.Summary = summarize(res)

	if opts.Format == "json" {
		if err := writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result}); err != nil {
			return err
		}
	} else {
		outputTraceText(cmd.OutOrStdout(), result)
	}

	if res.Err != nil {
		return WrapExitError(ExitFailure, "program failed", res.Err)
	}
	return nil
}

func outputTraceText(w io.Writer, result TraceResult) {
	fmt.Fprintf(w, "%6s %6s %2s %-12s %8s %5s %5s  %s\n",
		"SEQ", "PC", "OP", "STATUS", "DP", "CELL", "DEPTH", "CONDITION")

	for _, ev := range result.Timeline {
		op := ev.Op
		if op == "" {
			op = "·"
		}
		cell := "-"
		if ev.Cell != nil {
			cell = strconv.Itoa(*ev.Cell)
		}
		fmt.Fprintf(w, "%6d %6d %2s %-12s %8d %5s %5d  %s\n",
			ev.Seq, ev.ProgramCursor, op, ev.Status, ev.DataCursor, cell, ev.LoopDepth, ev.Condition)
	}
	if result.Truncated {
		fmt.Fprintf(w, "... truncated after %d steps (%d total)\n", len(result.Timeline), result.Summary.Steps)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Steps: %d\n", result.Summary.Steps)
	fmt.Fprintf(w, "Output: %q\n", result.Summary.Output)
	if result.Summary.ErrorKind != "" {
		fmt.Fprintf(w, "Error: %s\n", result.Summary.Error)
	}
}
