package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/bfe/internal/program"
	"github.com/roach88/bfe/internal/runner"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the inline program source.
	Program string `yaml:"program,omitempty"`

	// ProgramFile is a path to the program, relative to the scenario file.
	// Exactly one of Program and ProgramFile must be set.
	ProgramFile string `yaml:"program_file,omitempty"`

	// Input is what `,` reads, in order. Reads past the end see end of input.
	Input string `yaml:"input,omitempty"`

	Machine Machine `yaml:"machine,omitempty"`

	Expect Expect `yaml:"expect"`

	// Assertions validate the execution trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	source []byte
}

// Machine overrides the default machine settings. Unset fields keep the
// defaults.
type Machine struct {
	MemorySize     int   `yaml:"memory_size,omitempty"`
	CursorRollover *bool `yaml:"cursor_rollover,omitempty"`
	ValueRollover  *bool `yaml:"value_rollover,omitempty"`
	Strict         bool  `yaml:"strict,omitempty"`
	MaxSteps       int   `yaml:"max_steps,omitempty"`
}

// Settings returns the runner settings for this machine.
func (m Machine) Settings() runner.Settings {
	s := runner.DefaultSettings()
	if m.MemorySize != 0 {
		s.MemorySize = m.MemorySize
	}
	if m.CursorRollover != nil {
		s.CursorRollover = *m.CursorRollover
	}
	if m.ValueRollover != nil {
		s.ValueRollover = *m.ValueRollover
	}
	s.Strict = m.Strict
	s.MaxSteps = m.MaxSteps
	return s
}

// Expect lists what must hold after execution. Nil and empty fields are
// not checked, except Error: an empty Error means the run must not fail.
type Expect struct {
	Output     *string        `yaml:"output,omitempty"`
	Error      string         `yaml:"error,omitempty"`
	Cells      map[int]int    `yaml:"cells,omitempty"`
	DataCursor *int           `yaml:"data_cursor,omitempty"`
	LoopDepth  *int           `yaml:"loop_depth,omitempty"`
	Steps      *int           `yaml:"steps,omitempty"`
	Conditions map[string]int `yaml:"conditions,omitempty"`
}

// Assertion validates the execution trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Op executed at least once
	// - "trace_order": Ops first executed in this order
	// - "trace_count": Op executed exactly Count times
	Type string `yaml:"type"`

	// Op is an instruction symbol (used by trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Ops is the expected order (used by trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected number of executions (used by trace_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if scenario.ProgramFile != "" {
		p := scenario.ProgramFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		src, err := program.Load(p)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: %w", err)
		}
		scenario.source = src
	}

	return &scenario, nil
}

// Source returns the program bytes.
func (s *Scenario) Source() []byte {
	if s.source != nil {
		return s.source
	}
	return []byte(s.Program)
}

// NormalizedInput returns Input in NFC.
func (s *Scenario) NormalizedInput() string {
	return norm.NFC.String(s.Input)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}

	if s.Description == "" {
		return errors.New("description is required")
	}

	if (s.Program == "") == (s.ProgramFile == "") {
		return errors.New("exactly one of program and program_file is required")
	}

	if s.Machine.MemorySize < 0 {
		return fmt.Errorf("machine.memory_size must be > 0, got %d", s.Machine.MemorySize)
	}
	if s.Machine.MaxSteps < 0 {
		return fmt.Errorf("machine.max_steps must be >= 0, got %d", s.Machine.MaxSteps)
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertTraceContains, AssertTraceCount:
			if a.Op == "" {
				return fmt.Errorf("assertion %d: %s requires op", i, a.Type)
			}
		case AssertTraceOrder:
			if len(a.Ops) == 0 {
				return fmt.Errorf("assertion %d: trace_order requires ops", i)
			}
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
	}

	return nil
}
