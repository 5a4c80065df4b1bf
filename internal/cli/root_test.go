package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "bfe", cmd.Use)
	assert.Contains(t, cmd.Long, "replayable")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"run", "check", "trace", "test", "history", "replay"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("log-file"))
}

func TestMachineFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"run", "trace"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)

			size := sub.Flags().Lookup("memory-size")
			require.NotNil(t, size)
			assert.Equal(t, "1048576", size.DefValue)

			expr := sub.Flags().Lookup("expr")
			require.NotNil(t, expr)
			assert.Equal(t, "e", expr.Shorthand)

			input := sub.Flags().Lookup("input")
			require.NotNil(t, input)
			assert.Equal(t, "terminal", input.DefValue)

			for _, f := range []string{"cursor-rollover", "value-rollover", "strict", "max-steps"} {
				assert.NotNil(t, sub.Flags().Lookup(f), "flag %s", f)
			}
		})
	}
}

func TestHistoryAndReplayRequireDB(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"history", "replay"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)

			dbFlag := sub.Flags().Lookup("db")
			require.NotNil(t, dbFlag)
			assert.Equal(t, "", dbFlag.DefValue)
		})
	}
}

func TestRootInvalidFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "xml", "run", "-e", "+"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "bfe.log")

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-file", logPath, "run", "--input", "none", "-e", strings.Repeat("+", 33) + "."})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "!", out.String())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"program started"`)
}
