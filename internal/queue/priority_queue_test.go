package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDequeueHighestPriorityFirst(t *testing.T) {
	q := New()
	q.Enqueue("low", PriorityLow)
	q.Enqueue("critical", PriorityCritical)
	q.Enqueue("normal", PriorityNormal)
	q.Enqueue("high", PriorityHigh)

	expected := []string{"critical", "high", "normal", "low"}
	for _, want := range expected {
		got, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.True(t, q.IsEmpty())
}

func TestFIFOAmongEqualPriorities(t *testing.T) {
	q := New()
	q.Enqueue("first", PriorityNormal)
	q.Enqueue("second", PriorityNormal)
	q.Enqueue("third", PriorityNormal)

	for _, want := range []string{"first", "second", "third"} {
		got, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestDequeueEmpty(t *testing.T) {
	q := New()
	got, ok := q.Dequeue()
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, 0, q.Size())
}

func TestInterleavedEnqueueDequeue(t *testing.T) {
	q := New()
	q.Enqueue("a", PriorityNormal)
	q.Enqueue("b", PriorityHigh)

	got, _ := q.Dequeue()
	assert.Equal(t, "b", got)

	q.Enqueue("c", PriorityCritical)
	got, _ = q.Dequeue()
	assert.Equal(t, "c", got)
	got, _ = q.Dequeue()
	assert.Equal(t, "a", got)
}

func TestPriorityFromString(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"critical", PriorityCritical},
		{"high", PriorityHigh},
		{"normal", PriorityNormal},
		{"low", PriorityLow},
		{"", PriorityNormal},
		{"urgent", PriorityNormal},
		{"3", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PriorityFromString(tt.in), "input %q", tt.in)
	}
}

func TestSize(t *testing.T) {
	q := New()
	assert.Equal(t, 0, q.Size())
	q.Enqueue(1, PriorityLow)
	q.Enqueue(2, PriorityHigh)
	assert.Equal(t, 2, q.Size())
	q.Dequeue()
	assert.Equal(t, 1, q.Size())
}
