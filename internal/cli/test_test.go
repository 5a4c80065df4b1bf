package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../harness/testdata/scenarios"

func TestTestCommand_HarnessScenarios(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})

	out, err := execute(t, cmd, "", scenariosDir)
	require.NoError(t, err, out)

	for _, name := range []string{"letter", "echo_exhausted", "strict_unmatched", "rollover", "comment_dump"} {
		assert.Contains(t, out, "✓ "+name)
	}
	assert.Contains(t, out, "Test Summary: 5 passed, 0 failed, 5 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_Filter(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "json"})

	out, err := execute(t, cmd, "", "--filter", "letter*", scenariosDir)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "letter", resp.Data.Scenarios[0].Name)
}

func TestTestCommand_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", `
name: wrong
description: "Expects the wrong output"
program: "+."
machine:
  memory_size: 1
expect:
  output: "x"
`)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
}

func TestTestCommand_UpdateGolden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bang.yaml", `
name: bang
description: "Prints an exclamation mark"
program: "+++++++++++++++++++++++++++++++++."
machine:
  memory_size: 2
expect:
  output: "!"
`)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "", "--update", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ bang (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "bang.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"output": "!"`)
	assert.Contains(t, string(golden), `"steps": 34`)

	// A stale golden file fails the scenario even when expectations hold.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "bang.golden"), []byte("{}\n"), 0o644))
	cmd = NewTestCommand(&RootOptions{Format: "text"})
	out, err = execute(t, cmd, "", dir)
	require.Error(t, err)
	assert.Contains(t, out, "snapshot does not match golden file")
}

func TestTestCommand_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		cmd := NewTestCommand(&RootOptions{Format: "text"})
		_, err := execute(t, cmd, "", filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "scenarios directory not found")
	})

	t.Run("empty directory", func(t *testing.T) {
		cmd := NewTestCommand(&RootOptions{Format: "text"})
		out, err := execute(t, cmd, "", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "No scenarios found.\n", out)
	})

	t.Run("invalid scenario", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "broken.yml", "name: [unclosed\n")

		cmd := NewTestCommand(&RootOptions{Format: "text"})
		out, err := execute(t, cmd, "", dir)
		require.Error(t, err)
		assert.Contains(t, out, "✗ broken.yml")
		assert.Contains(t, out, "failed to load scenario")
	})
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "")
	writeFile(t, dir, "b.yml", "")
	writeFile(t, dir, "c.txt", "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "d.yaml", "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = findScenarioFiles(dir, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml")}, files)

	_, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
}
