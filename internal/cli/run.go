package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/bfe/internal/runner"
	"github.com/roach88/bfe/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Machine  MachineFlags
	Database string

	// IDGenerator names recorded runs. Nil uses store.UUIDv7Generator.
	IDGenerator store.RunIDGenerator
}

// RunSummary is the JSON payload of a finished run.
type RunSummary struct {
	Name          string         `json:"name"`
	Output        string         `json:"output"`
	Input         string         `json:"input,omitempty"`
	Steps         int            `json:"steps"`
	ProgramCursor int            `json:"program_cursor"`
	DataCursor    int            `json:"data_cursor"`
	LoopDepth     int            `json:"loop_depth"`
	Conditions    map[string]int `json:"conditions"`
	ErrorKind     string         `json:"error_kind,omitempty"`
	Error         string         `json:"error,omitempty"`
	RunID         string         `json:"run_id,omitempty"`
	Seq           int64          `json:"seq,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [program-file]",
		Short: "Run a program",
		Long: `Run a program file, or a program given inline with -e.

Output is written to stdout as the program produces it. Input is read
from the terminal one keystroke at a time, from stdin, or not at all
(--input). With --db the run is recorded for history and replay.

Exit codes:
  0 - Program ran to completion
  1 - Program stopped on a fatal condition or the step limit
  2 - Command error (missing file, invalid config, etc.)

Examples:
  bfe run hello.bf
  bfe run -e '++++++++[>++++++++<-]>+.'
  bfe run --strict --memory-size 30000 prog.bf
  bfe run --input stdin --db runs.db prog.bf < input.txt`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, args, cmd)
		},
	}

	addMachineFlags(cmd, &opts.Machine)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runProgram(opts *RunOptions, args []string, cmd *cobra.Command) error {
	logger := opts.logger()

	name, src, settings, dev, err := prepare(cmd, opts.RootOptions, &opts.Machine, args)
	if err != nil {
		return err
	}
	defer dev.Close()

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	req := runner.Request{
		Name:     name,
		Program:  src,
		Settings: settings,
		Input:    dev,
		Logger:   logger,
	}
	if opts.Format != "json" {
		req.Output = cmd.OutOrStdout()
	}

	logger.Debug("running program", "name", name, "size", len(src))
	res, err := runner.Run(ctx, req)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build machine", err)
	}

	summary := summarize(res)

	if st != nil {
		gen := opts.IDGenerator
		if gen == nil {
			gen = store.UUIDv7Generator{}
		}
		run := res.Record(gen.Generate())
		seq, err := st.WriteRun(ctx, run)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		summary.RunID, summary.Seq = run.ID, seq
		logger.Info("run recorded", "id", run.ID, "seq", seq)
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: summary, RunID: summary.RunID}
		if res.Err != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeRuntime, Message: res.Err.Error(), Details: summary.ErrorKind}
		}
		if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
	}

	if res.Err != nil {
		return WrapExitError(ExitFailure, "program failed", res.Err)
	}
	return nil
}

func summarize(res *runner.Result) RunSummary {
	s := RunSummary{
		Name:          res.Name,
		Output:        string(res.Output),
		Input:         res.Input,
		Steps:         res.Report.Steps,
		ProgramCursor: res.Report.ProgramCursor,
		DataCursor:    res.Report.DataCursor,
		LoopDepth:     res.Report.LoopDepth,
		Conditions:    res.Conditions(),
		ErrorKind:     runner.ErrorKind(res.Err),
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	return s
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
// Uses the command's context if available (for testing).
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			fmt.Fprintf(cmd.ErrOrStderr(), "\nreceived %v, stopping\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
