package testutil

import (
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptedInput(t *testing.T) {
	in := NewScriptedInput("hé")

	r, err := in.ReadChar()
	require.NoError(t, err)
	assert.Equal(t, 'h', r)
	assert.Equal(t, "é", in.Remaining())

	r, err = in.ReadChar()
	require.NoError(t, err)
	assert.Equal(t, 'é', r)

	_, err = in.ReadChar()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 3, in.Reads())
}

func TestFailingDevices(t *testing.T) {
	_, err := FailingInput{}.ReadChar()
	assert.ErrorIs(t, err, ErrDevice)

	_, err = FailingWriter{}.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrDevice)
}

func TestSequentialIDGenerator(t *testing.T) {
	g := NewSequentialIDGenerator("")
	assert.Equal(t, "run-1", g.Generate())
	assert.Equal(t, "run-2", g.Generate())

	g.Reset()
	assert.Equal(t, "run-1", g.Generate())
}

func TestSequentialIDGenerator_Concurrent(t *testing.T) {
	g := NewSequentialIDGenerator("x")

	var wg sync.WaitGroup
	seen := make(chan string, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- g.Generate()
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[string]bool)
	for id := range seen {
		unique[id] = true
	}
	assert.Len(t, unique, 100)
}
