package eventbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferFIFOOrder(t *testing.T) {
	b := New(4)
	b.Push(Event{Type: "a"})
	b.Push(Event{Type: "b"})
	b.Push(Event{Type: "c"})

	drained := b.Drain(2)
	require.Len(t, drained, 2)
	assert.Equal(t, "a", drained[0].Type)
	assert.Equal(t, "b", drained[1].Type)

	rest := b.Drain(10)
	require.Len(t, rest, 1)
	assert.Equal(t, "c", rest[0].Type)
}

func TestBufferDropsOldestOnOverflow(t *testing.T) {
	b := New(2)
	b.Push(Event{Type: "1"})
	b.Push(Event{Type: "2"})
	b.Push(Event{Type: "3"})

	assert.Equal(t, uint64(1), b.Dropped())
	drained := b.Drain(10)
	require.Len(t, drained, 2)
	assert.Equal(t, "2", drained[0].Type)
	assert.Equal(t, "3", drained[1].Type)
}

func TestBufferDrainEmpty(t *testing.T) {
	b := New(4)
	assert.Empty(t, b.Drain(10))
	assert.Equal(t, 0, b.Len())
}

func TestBufferMinimumCapacity(t *testing.T) {
	b := New(0)
	b.Push(Event{Type: "a"})
	b.Push(Event{Type: "b"})
	assert.Equal(t, 1, b.Len())
}
