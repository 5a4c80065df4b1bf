package testutil

import (
	"errors"
	"io"
	"sync"
)

// ScriptedInput is an input device that returns predetermined characters,
// then io.EOF.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type ScriptedInput struct {
	mu    sync.Mutex
	chars []rune
	idx   int
	reads int
}

// NewScriptedInput creates a device that yields the runes of s in order.
func NewScriptedInput(s string) *ScriptedInput {
	return &ScriptedInput{chars: []rune(s)}
}

// ReadChar returns the next scripted character or io.EOF when exhausted.
func (s *ScriptedInput) ReadChar() (rune, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.idx >= len(s.chars) {
		return 0, io.EOF
	}
	r := s.chars[s.idx]
	s.idx++
	return r, nil
}

// Reads returns how many times ReadChar was called, including EOF calls.
func (s *ScriptedInput) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Remaining returns the characters not yet consumed.
func (s *ScriptedInput) Remaining() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.chars[s.idx:])
}

// ErrDevice is returned by FailingInput and FailingWriter.
var ErrDevice = errors.New("testutil: device failure")

// FailingInput is an input device whose every read fails with ErrDevice.
type FailingInput struct{}

// ReadChar always fails.
func (FailingInput) ReadChar() (rune, error) {
	return 0, ErrDevice
}

// FailingWriter is an io.Writer whose every write fails with ErrDevice.
type FailingWriter struct{}

// Write always fails.
func (FailingWriter) Write(p []byte) (int, error) {
	return 0, ErrDevice
}
