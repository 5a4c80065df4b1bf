package tape

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange matches any RangeError via errors.Is.
	ErrOutOfRange = errors.New("tape: cursor out of range")

	// ErrInvalidSize is returned by New for a non-positive size.
	ErrInvalidSize = errors.New("tape: size must be positive")
)

// RangeError reports an access through a cursor outside [0, Size).
type RangeError struct {
	Position int
	Size     int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("tape: cursor %d out of range [0, %d)", e.Position, e.Size)
}

// Is lets errors.Is(err, ErrOutOfRange) match.
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
