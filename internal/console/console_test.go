package console

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_ReadsRunes(t *testing.T) {
	r := NewReader(strings.NewReader("aé\n"))

	for _, want := range []rune{'a', 'é', '\n'} {
		got, err := r.ReadChar()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := r.ReadChar()
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, r.Close())
}

func TestNone(t *testing.T) {
	_, err := None{}.ReadChar()

	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, None{}.Close())
}

func TestEchoRune(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, echoRune(&buf, 'x'))
	require.NoError(t, echoRune(&buf, '\r'))
	require.NoError(t, echoRune(&buf, 'ß'))

	assert.Equal(t, "x\r\nß", buf.String())
}

func tempInput(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestOpen_TerminalFallsBackForFiles(t *testing.T) {
	f := tempInput(t, "hi")

	dev, err := Open(ModeTerminal, f, io.Discard)

	require.NoError(t, err)
	assert.IsType(t, &Reader{}, dev)

	c, err := dev.ReadChar()
	require.NoError(t, err)
	assert.Equal(t, 'h', c)
}

func TestOpen_Modes(t *testing.T) {
	f := tempInput(t, "")

	dev, err := Open(ModeStdin, f, nil)
	require.NoError(t, err)
	assert.IsType(t, &Reader{}, dev)

	dev, err = Open(ModeNone, f, nil)
	require.NoError(t, err)
	assert.Equal(t, None{}, dev)

	_, err = Open("keyboard", f, nil)
	assert.ErrorIs(t, err, ErrUnknownMode)
}
