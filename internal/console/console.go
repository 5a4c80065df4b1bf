// Package console provides the input devices the `,` instruction reads from.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Input modes.
const (
	ModeTerminal = "terminal"
	ModeStdin    = "stdin"
	ModeNone     = "none"
)

// ctrlD ends input on a raw terminal.
const ctrlD = 0x04

// ErrUnknownMode is returned by Open for an unrecognized mode.
var ErrUnknownMode = errors.New("unknown input mode")

// Device yields one character per ReadChar call and io.EOF when input ends.
type Device interface {
	ReadChar() (rune, error)
	Close() error
}

// Open returns the device for mode. In terminal mode in is switched into raw
// mode for each read when it is a terminal; otherwise it is read like stdin.
// Raw reads are echoed to echo.
func Open(mode string, in *os.File, echo io.Writer) (Device, error) {
	switch mode {
	case ModeTerminal:
		if term.IsTerminal(int(in.Fd())) {
			return NewTerminal(in, echo), nil
		}
		return NewReader(in), nil
	case ModeStdin:
		return NewReader(in), nil
	case ModeNone:
		return None{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// Terminal reads single keystrokes without waiting for a newline.
type Terminal struct {
	fd   int
	r    *bufio.Reader
	echo io.Writer
}

// NewTerminal creates a Terminal over f. The caller must ensure f is a
// terminal.
func NewTerminal(f *os.File, echo io.Writer) *Terminal {
	if echo == nil {
		echo = io.Discard
	}
	return &Terminal{
		fd:   int(f.Fd()),
		r:    bufio.NewReader(f),
		echo: echo,
	}
}

// ReadChar puts the terminal into raw mode, reads one character and restores
// the previous mode. The character is echoed since the terminal no longer
// does it. Ctrl-D reports io.EOF.
func (t *Terminal) ReadChar() (rune, error) {
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return 0, fmt.Errorf("raw mode: %w", err)
	}
	defer func() { _ = term.Restore(t.fd, state) }()

	r, _, err := t.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if r == ctrlD {
		return 0, io.EOF
	}

	if err := echoRune(t.echo, r); err != nil {
		return 0, fmt.Errorf("echo: %w", err)
	}
	return r, nil
}

// Close is a no-op; the terminal mode is restored after every read.
func (t *Terminal) Close() error {
	return nil
}

// echoRune writes r as a raw terminal needs it: carriage return becomes a
// full line break.
func echoRune(w io.Writer, r rune) error {
	s := string(r)
	if r == '\r' {
		s = "\r\n"
	}
	_, err := io.WriteString(w, s)
	return err
}

// Reader reads UTF-8 characters from any io.Reader.
type Reader struct {
	r      *bufio.Reader
	closer io.Closer
}

// NewReader creates a Reader over r. If r is an io.Closer, Close closes it,
// except for os.Stdin.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok && r != io.Reader(os.Stdin) {
		rd.closer = c
	}
	return rd
}

// ReadChar returns the next character.
func (r *Reader) ReadChar() (rune, error) {
	c, _, err := r.r.ReadRune()
	return c, err
}

// Close closes the underlying reader if it is closable.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// None has no input.
type None struct{}

// ReadChar always returns io.EOF.
func (None) ReadChar() (rune, error) {
	return 0, io.EOF
}

// Close implements Device.
func (None) Close() error {
	return nil
}
