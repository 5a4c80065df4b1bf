// Package tape implements the fixed-length cell store shared by program
// memory and data memory.
//
// A Tape is a sequence of integer cells with one movable cursor. Two
// independent policies decide what happens at the edges:
//
//   - cursor rollover: moving past either end wraps to the other end
//   - value rollover: incrementing past 255 yields 0, decrementing below 0
//     yields 255
//
// With a policy disabled the cursor (or value) is simply left out of range.
// Values are never clamped on Write; only the increment/decrement paths
// apply value rollover.
package tape

// DefaultSize is the number of cells in a tape created without an explicit size.
const DefaultSize = 1_048_576

// MaxCellValue is the largest value a cell holds under value rollover.
const MaxCellValue = 255

// Tape is a fixed-length sequence of cells with a single cursor.
//
// Not safe for concurrent use. The engine owns its tapes exclusively.
type Tape struct {
	cells          []int
	cursor         int
	cursorRollover bool
	valueRollover  bool
}

// Option configures a Tape at construction.
type Option func(*Tape)

// WithCursorRollover sets the cursor rollover policy.
func WithCursorRollover(enabled bool) Option {
	return func(t *Tape) {
		t.cursorRollover = enabled
	}
}

// WithValueRollover sets the value rollover policy.
func WithValueRollover(enabled bool) Option {
	return func(t *Tape) {
		t.valueRollover = enabled
	}
}

// New creates a zeroed tape of the given size with both rollover policies
// enabled unless overridden by opts.
func New(size int, opts ...Option) (*Tape, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	t := &Tape{
		cells:          make([]int, size),
		cursorRollover: true,
		valueRollover:  true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Load creates a tape whose cells are the given bytes, one cell per byte.
//
// Both rollover policies default to disabled: a program cursor must run off
// the end instead of wrapping, and program bytes are never reinterpreted
// under overflow rules. An empty slice yields a tape of size 0.
func Load(data []byte, opts ...Option) *Tape {
	cells := make([]int, len(data))
	for i, b := range data {
		cells[i] = int(b)
	}

	t := &Tape{cells: cells}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// IncrementCell adds one to the current cell.
func (t *Tape) IncrementCell() error {
	if !t.InRange() {
		return t.rangeError(t.cursor)
	}
	v := t.cells[t.cursor] + 1
	if t.valueRollover {
		v = rollForward(v, MaxCellValue+1)
	}
	t.cells[t.cursor] = v
	return nil
}

// DecrementCell subtracts one from the current cell.
func (t *Tape) DecrementCell() error {
	if !t.InRange() {
		return t.rangeError(t.cursor)
	}
	v := t.cells[t.cursor] - 1
	if t.valueRollover {
		v = rollBack(v, MaxCellValue+1)
	}
	t.cells[t.cursor] = v
	return nil
}

// Advance moves the cursor one cell forward.
//
// With cursor rollover disabled the cursor still moves; the returned error
// reports that it now sits outside the tape.
func (t *Tape) Advance() error {
	c := t.cursor + 1
	if t.cursorRollover {
		c = rollForward(c, len(t.cells))
	}
	t.cursor = c
	if !t.InRange() {
		return t.rangeError(c)
	}
	return nil
}

// Retreat moves the cursor one cell back. See Advance for the error contract.
func (t *Tape) Retreat() error {
	c := t.cursor - 1
	if t.cursorRollover {
		c = rollBack(c, len(t.cells))
	}
	t.cursor = c
	if !t.InRange() {
		return t.rangeError(c)
	}
	return nil
}

// Seek sets the cursor directly. The position is not validated.
func (t *Tape) Seek(pos int) {
	t.cursor = pos
}

// Read returns the value of the current cell.
func (t *Tape) Read() (int, error) {
	if !t.InRange() {
		return 0, t.rangeError(t.cursor)
	}
	return t.cells[t.cursor], nil
}

// ReadAt returns the value at pos. The boolean is false when pos lies
// outside the tape; callers must not treat that as a zero cell.
func (t *Tape) ReadAt(pos int) (int, bool) {
	if pos < 0 || pos >= len(t.cells) {
		return 0, false
	}
	return t.cells[pos], true
}

// Write overwrites the current cell. No range clamp is applied.
func (t *Tape) Write(v int) error {
	if !t.InRange() {
		return t.rangeError(t.cursor)
	}
	t.cells[t.cursor] = v
	return nil
}

// Cursor returns the cursor position, which may be out of range.
func (t *Tape) Cursor() int { return t.cursor }

// Size returns the number of cells.
func (t *Tape) Size() int { return len(t.cells) }

// InRange reports whether the cursor addresses a cell.
func (t *Tape) InRange() bool {
	return t.cursor >= 0 && t.cursor < len(t.cells)
}

// CursorRollover reports the cursor rollover policy.
func (t *Tape) CursorRollover() bool { return t.cursorRollover }

// ValueRollover reports the value rollover policy.
func (t *Tape) ValueRollover() bool { return t.valueRollover }

// SetCursorRollover changes the cursor rollover policy.
func (t *Tape) SetCursorRollover(enabled bool) { t.cursorRollover = enabled }

// SetValueRollover changes the value rollover policy.
func (t *Tape) SetValueRollover(enabled bool) { t.valueRollover = enabled }

func (t *Tape) rangeError(pos int) error {
	return &RangeError{Position: pos, Size: len(t.cells)}
}

// rollForward resets v to 0 once it reaches limit.
func rollForward(v, limit int) int {
	if v >= limit {
		return 0
	}
	return v
}

// rollBack resets v to limit-1 once it drops below 0.
func rollBack(v, limit int) int {
	if v < 0 {
		return limit - 1
	}
	return v
}
