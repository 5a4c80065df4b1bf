package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckValidProgram(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ok.bf", "++[>+<-] // fine\n")
	cmd := NewCheckCommand(&RootOptions{Format: "text"})

	out, err := execute(t, cmd, "", path)
	require.NoError(t, err)
	assert.Equal(t, "✓ "+path+" is valid\n", out)
}

func TestCheckUnmatchedBracket(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.bf", "+]\n[")
	cmd := NewCheckCommand(&RootOptions{Format: "text"})

	out, err := execute(t, cmd, "", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, path+":1:2: error E201:")
	assert.Contains(t, out, path+":2:1: error E202:")
	assert.NotContains(t, out, "is valid")
}

func TestCheckWarningsDoNotFail(t *testing.T) {
	path := writeFile(t, t.TempDir(), "warn.bf", "?5,5")
	cmd := NewCheckCommand(&RootOptions{Format: "text"})

	out, err := execute(t, cmd, "", path)
	require.NoError(t, err)
	assert.Contains(t, out, "warning E204")
	assert.Contains(t, out, "is valid")
}

func TestCheckMissingFile(t *testing.T) {
	cmd := NewCheckCommand(&RootOptions{Format: "text"})

	_, err := execute(t, cmd, "", filepath.Join(t.TempDir(), "missing.bf"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheckJSONFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.bf", "/* open")
	cmd := NewCheckCommand(&RootOptions{Format: "json"})

	out, err := execute(t, cmd, "", path)
	require.Error(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
		Error  *CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCheckFailed, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Diagnostics, 1)
	assert.Equal(t, "E203", resp.Data.Diagnostics[0].Code)
	assert.Equal(t, 0, resp.Data.Diagnostics[0].Offset)
}
