package alg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackArray(t *testing.T) {
	s := NewStackArray(4)
	_, exists := s.Pop()
	assert.False(t, exists, "pop of empty stack")

	for i := 0; i < 4; i++ {
		s.Push(i)
	}
	top, exists := s.Peek()
	require.True(t, exists)
	assert.Equal(t, 3, top)

	second, _ := s.Index(1)
	assert.Equal(t, 2, second)
	_, exists = s.Index(4)
	assert.False(t, exists)

	removed, exists := s.Remove(1)
	require.True(t, exists)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []int{0, 1, 3}, s.Array)

	c := new(StackArray)
	s.CopyTo(c)
	assert.True(t, s.Equal(c))
	c.Push(9)
	assert.False(t, s.Equal(c), "copy must not share state")
	assert.Equal(t, 3, s.Size())
}

func TestQueueSlice(t *testing.T) {
	q := NewQueueSlice(3)
	for i := 1; i <= 3; i++ {
		q.Enqueue(i)
	}
	front, _ := q.Dequeue()
	assert.Equal(t, 1, front)
	assert.Equal(t, 2, q.Size())

	next, exists := q.Peek()
	require.True(t, exists)
	assert.Equal(t, 2, next)
	_, exists = q.Index(2)
	assert.False(t, exists)

	c := new(QueueSlice)
	q.CopyTo(c)
	assert.True(t, q.Equal(c))
	c.Dequeue()
	assert.False(t, q.Equal(c))
	assert.Equal(t, 2, q.Size())

	q.Clear()
	_, exists = q.Dequeue()
	assert.False(t, exists)
}
