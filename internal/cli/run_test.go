package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bfe/internal/store"
	"github.com/roach88/bfe/internal/testutil"
)

// execute runs cmd with args, feeding stdin to the program, and returns
// what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())

	err := cmd.Execute()
	return out.String(), err
}

type runResponse struct {
	Status string     `json:"status"`
	Data   RunSummary `json:"data"`
	Error  *CLIError  `json:"error"`
	RunID  string     `json:"run_id"`
}

func decodeRun(t *testing.T, out string) runResponse {
	t.Helper()
	var resp runResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunInlineProgram(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})

	out, err := execute(t, cmd, "", "--input", "none", "-e", "++++++++[>++++++++<-]>+.")
	require.NoError(t, err)
	assert.Equal(t, "A", out)
}

func TestRunProgramFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bang.bf", strings.Repeat("+", 33)+". // prints !\n")
	cmd := NewRunCommand(&RootOptions{Format: "text"})

	out, err := execute(t, cmd, "", "--input", "none", path)
	require.NoError(t, err)
	assert.Equal(t, "!", out)
}

func TestRunReadsStdin(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})

	out, err := execute(t, cmd, "hi", "--input", "stdin", "-e", ",.,.,.")
	require.NoError(t, err)
	assert.Equal(t, "hii", out)
}

func TestRunStrictFailure(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})

	_, err := execute(t, cmd, "", "--input", "none", "--strict", "-e", "+]+")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "program failed")
}

func TestRunCommandErrors(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "p.bf", "+")

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"no program", []string{"--input", "none"}, "a program file or -e is required"},
		{"file and expr", []string{"--input", "none", "-e", "+", prog}, "not both"},
		{"missing file", []string{"--input", "none", filepath.Join(dir, "missing.bf")}, "failed to load program"},
		{"zero memory", []string{"--input", "none", "--memory-size", "0", "-e", "+"}, "failed to load config"},
		{"bad input mode", []string{"--input", "serial", "-e", "+"}, "failed to load config"},
		{"missing config", []string{"--input", "none", "--config", filepath.Join(dir, "nope.yaml"), "-e", "+"}, "failed to load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRunCommand(&RootOptions{Format: "text"})
			_, err := execute(t, cmd, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "machine.yaml", `
memory:
  size: 4
  cursor_rollover: false
strict: true
input: none
`)

	t.Run("config applies", func(t *testing.T) {
		cmd := NewRunCommand(&RootOptions{Format: "json", Config: cfg})
		out, err := execute(t, cmd, "", "-e", "<+")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		resp := decodeRun(t, out)
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "DATA_CURSOR_OUT_OF_RANGE", resp.Data.ErrorKind)
		assert.Equal(t, 1, resp.Data.Steps)
	})

	t.Run("flags override config", func(t *testing.T) {
		cmd := NewRunCommand(&RootOptions{Format: "json", Config: cfg})
		out, err := execute(t, cmd, "", "--strict=false", "-e", "<+")
		require.NoError(t, err)

		resp := decodeRun(t, out)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, 2, resp.Data.Steps)
		assert.Equal(t, 2, resp.Data.Conditions["DATA_CURSOR_OUT_OF_RANGE"])
	})
}

func TestRunJSONFormat(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "json"})

	out, err := execute(t, cmd, "", "--input", "none", "-e", "++++++++[>++++++++<-]>+.")
	require.NoError(t, err)

	resp := decodeRun(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "-e", resp.Data.Name)
	assert.Equal(t, "A", resp.Data.Output)
	assert.Equal(t, 116, resp.Data.Steps)
	assert.Equal(t, 1, resp.Data.DataCursor)
	assert.Empty(t, resp.Data.RunID)
}

func TestRunMaxSteps(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "json"})

	out, err := execute(t, cmd, "", "--input", "none", "--max-steps", "100", "-e", "+[]")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeRun(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRuntime, resp.Error.Code)
	assert.Equal(t, "MAX_STEPS_EXCEEDED", resp.Data.ErrorKind)
	assert.Equal(t, 100, resp.Data.Steps)
}

// newRecordingRunCommand builds a run command whose recorded runs are named
// by gen.
func newRecordingRunCommand(gen store.RunIDGenerator) *cobra.Command {
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "json"},
		IDGenerator: gen,
	}
	cmd := &cobra.Command{
		Use:           "run",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, args, cmd)
		},
	}
	addMachineFlags(cmd, &opts.Machine)
	cmd.Flags().StringVar(&opts.Database, "db", "", "")
	return cmd
}

func TestRunRecordsToDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	cmd := newRecordingRunCommand(store.NewFixedGenerator("run-1"))

	out, err := execute(t, cmd, "ok", "--input", "stdin", "--db", dbPath, "-e", ",.,.")
	require.NoError(t, err)

	resp := decodeRun(t, out)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, int64(1), resp.Data.Seq)
	assert.Equal(t, "ok", resp.Data.Output)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "-e", run.ProgramName)
	assert.Equal(t, []byte(",.,."), run.Program)
	assert.Equal(t, "ok", run.Input)
	assert.Equal(t, []byte("ok"), run.Output)
	assert.Equal(t, 4, run.Steps)
}

func TestRunRecordsSuccessiveRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	gen := testutil.NewSequentialIDGenerator("run")

	for i, prog := range []string{"+.", "++.", "+++."} {
		out, err := execute(t, newRecordingRunCommand(gen), "", "--input", "none", "--db", dbPath, "-e", prog)
		require.NoError(t, err)

		resp := decodeRun(t, out)
		assert.Equal(t, int64(i+1), resp.Data.Seq)
	}

	out, err := execute(t, NewHistoryCommand(&RootOptions{Format: "json"}), "", "--db", dbPath, "--limit", "2")
	require.NoError(t, err)

	var resp historyResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Runs, 2)
	assert.Equal(t, "run-2", resp.Data.Runs[0].ID)
	assert.Equal(t, "run-3", resp.Data.Runs[1].ID)
	assert.Equal(t, int64(3), resp.Data.LastSeq)
}
