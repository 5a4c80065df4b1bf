package store

import (
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id, hash string) Run {
	return Run{
		ID:          id,
		ProgramName: "test.bf",
		ProgramHash: hash,
		Program:     []byte("+."),
		Output:      []byte(`\x01`),
		Steps:       2,
		Conditions:  map[string]int{},
		Machine: Machine{
			MemorySize:     16,
			CursorRollover: true,
			ValueRollover:  true,
		},
	}
}
