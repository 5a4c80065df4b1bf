package runner

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bfe/internal/config"
	"github.com/roach88/bfe/internal/engine"
	"github.com/roach88/bfe/internal/program"
	"github.com/roach88/bfe/internal/testutil"
)

func smallSettings() Settings {
	s := DefaultSettings()
	s.MemorySize = 16
	return s
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 1_048_576, s.MemorySize)
	assert.True(t, s.CursorRollover)
	assert.True(t, s.ValueRollover)
	assert.False(t, s.Strict)
	assert.Equal(t, 0, s.MaxSteps)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Memory.Size = 8
	cfg.Memory.ValueRollover = false
	cfg.Strict = true
	cfg.MaxSteps = 10

	s := FromConfig(cfg)

	assert.Equal(t, Settings{MemorySize: 8, CursorRollover: true, Strict: true, MaxSteps: 10}, s)
}

func TestRun_CapturesAndTees(t *testing.T) {
	var tee bytes.Buffer

	res, err := Run(context.Background(), Request{
		Name:     "letter",
		Program:  []byte("++++++++[>++++++++<-]>+."),
		Settings: smallSettings(),
		Output:   &tee,
	})

	require.NoError(t, err)
	require.NoError(t, res.Err)
	assert.Equal(t, "A", string(res.Output))
	assert.Equal(t, "A", tee.String())
	assert.Equal(t, 1, res.Report.DataCursor)

	v, ok := res.Memory.ReadAt(1)
	require.True(t, ok)
	assert.Equal(t, 65, v)
}

func TestRun_RecordsConsumedInput(t *testing.T) {
	in := testutil.NewScriptedInput("hello")

	res, err := Run(context.Background(), Request{
		Program:  []byte(",.,."),
		Settings: smallSettings(),
		Input:    in,
	})

	require.NoError(t, err)
	assert.Equal(t, "he", res.Input, "only consumed characters are recorded")
	assert.Equal(t, "llo", in.Remaining())
	assert.Equal(t, "he", string(res.Output))
}

func TestRun_NoInputDevice(t *testing.T) {
	res, err := Run(context.Background(), Request{
		Program:  []byte(","),
		Settings: smallSettings(),
	})

	require.NoError(t, err)
	assert.Equal(t, "", res.Input)
	assert.Equal(t, 1, res.Conditions()["INPUT_EXHAUSTED"])
}

func TestRun_StrictErrorInResult(t *testing.T) {
	s := smallSettings()
	s.Strict = true

	res, err := Run(context.Background(), Request{Program: []byte("+]"), Settings: s})

	require.NoError(t, err)
	require.Error(t, res.Err)
	assert.Equal(t, "EMPTY_LOOP_STACK", ErrorKind(res.Err))
}

func TestRun_InvalidSettings(t *testing.T) {
	s := smallSettings()
	s.MemorySize = 0
	_, err := Run(context.Background(), Request{Settings: s})
	assert.Error(t, err)

	s = smallSettings()
	s.MaxSteps = -1
	_, err = Run(context.Background(), Request{Settings: s})
	assert.Error(t, err)
}

func TestRun_Tracer(t *testing.T) {
	var steps []engine.Step

	_, err := Run(context.Background(), Request{
		Program:  []byte("+>"),
		Settings: smallSettings(),
		Tracer:   func(s engine.Step) { steps = append(steps, s) },
	})

	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, engine.OpRight, steps[1].Op)
}

func TestErrorKind(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := smallSettings()
	s.MaxSteps = 5
	loop, err := Run(context.Background(), Request{Program: []byte("+[]"), Settings: s})
	require.NoError(t, err)

	cancelled, err := Run(ctx, Request{Program: []byte("+"), Settings: smallSettings()})
	require.NoError(t, err)

	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, ErrorKindMaxSteps, ErrorKind(loop.Err))
	assert.Equal(t, ErrorKindCancelled, ErrorKind(cancelled.Err))
	assert.Equal(t, ErrorKindIO, ErrorKind(testutil.ErrDevice))
}

func TestRecord(t *testing.T) {
	res, err := Run(context.Background(), Request{
		Name:     "echo.bf",
		Program:  []byte(",.x"),
		Settings: smallSettings(),
		Input:    testutil.NewScriptedInput("q"),
	})
	require.NoError(t, err)

	run := res.Record("run-1")

	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "echo.bf", run.ProgramName)
	assert.Equal(t, program.Hash([]byte(",.x")), run.ProgramHash)
	assert.Equal(t, "q", run.Input)
	assert.Equal(t, []byte("q"), run.Output)
	assert.Equal(t, 3, run.Steps)
	assert.Equal(t, map[string]int{"UNRECOGNIZED_SYMBOL": 1}, run.Conditions)
	assert.Equal(t, "", run.ErrorKind)
	assert.Equal(t, 16, run.Machine.MemorySize)
}
