package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/bfe/internal/runner"
)

// GoldenDir is the directory, relative to a scenario file, holding its
// golden snapshot.
const GoldenDir = "golden"

// Snapshot is the deterministic summary of a scenario run stored in golden
// files.
type Snapshot struct {
	Scenario      string         `json:"scenario"`
	Output        string         `json:"output"`
	Error         string         `json:"error,omitempty"`
	Steps         int            `json:"steps"`
	ProgramCursor int            `json:"program_cursor"`
	DataCursor    int            `json:"data_cursor"`
	LoopDepth     int            `json:"loop_depth"`
	Conditions    map[string]int `json:"conditions"`
	Cells         []Cell         `json:"cells"`
}

// Cell is a non-zero memory cell.
type Cell struct {
	Address int `json:"address"`
	Value   int `json:"value"`
}

// NewSnapshot summarizes a run. Only non-zero cells are included.
func NewSnapshot(name string, res *runner.Result) Snapshot {
	s := Snapshot{
		Scenario:      name,
		Output:        norm.NFC.String(string(res.Output)),
		Error:         runner.ErrorKind(res.Err),
		Steps:         res.Report.Steps,
		ProgramCursor: res.Report.ProgramCursor,
		DataCursor:    res.Report.DataCursor,
		LoopDepth:     res.Report.LoopDepth,
		Conditions:    res.Conditions(),
		Cells:         []Cell{},
	}
	for addr := 0; addr < res.Memory.Size(); addr++ {
		if v, _ := res.Memory.ReadAt(addr); v != 0 {
			s.Cells = append(s.Cells, Cell{Address: addr, Value: v})
		}
	}
	return s
}

// Marshal renders the snapshot as indented JSON with a trailing newline.
// HTML escaping is disabled so output reads as written.
func (s Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// AssertGolden compares the result's snapshot against
// {fixtureDir}/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, fixtureDir, name string, result *Result) {
	t.Helper()

	data, err := NewSnapshot(name, result.Run).Marshal()
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(fixtureDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

// GoldenPath returns the golden file path for a scenario file.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, GoldenDir, name+".golden")
}

// UpdateGolden writes the result's snapshot to the scenario's golden file.
func UpdateGolden(scenarioFile string, scenario *Scenario, result *Result) error {
	data, err := NewSnapshot(scenario.Name, result.Run).Marshal()
	if err != nil {
		return err
	}

	path := GoldenPath(scenarioFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the result's snapshot matches the
// scenario's golden file. A missing golden file returns os.ErrNotExist.
func CompareGolden(scenarioFile string, scenario *Scenario, result *Result) (bool, error) {
	want, err := os.ReadFile(GoldenPath(scenarioFile))
	if err != nil {
		return false, err
	}

	got, err := NewSnapshot(scenario.Name, result.Run).Marshal()
	if err != nil {
		return false, err
	}
	return bytes.Equal(want, got), nil
}
