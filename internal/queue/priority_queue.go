package queue

import (
	"container/heap"
	"strconv"
	"sync"
)

// Symbolic priority levels. Unrecognized symbolic values fall back to normal.
const (
	PriorityLow      = 1
	PriorityNormal   = 2
	PriorityHigh     = 3
	PriorityCritical = 4
)

/**
 * Map a symbolic or numeric priority string to its numeric level
 * @param {string} s - critical/high/normal/low or a numeric string
 * @returns {int} Numeric priority, normal (2) for anything unrecognized
 */
func PriorityFromString(s string) int {
	switch s {
	case "critical":
		return PriorityCritical
	case "high":
		return PriorityHigh
	case "normal":
		return PriorityNormal
	case "low":
		return PriorityLow
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return PriorityNormal
}

type entry struct {
	value    interface{}
	priority int
	seq      uint64
}

// entryHeap orders by priority descending, insertion sequence ascending among
// equals (FIFO for ties).
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(*entry)) }

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

/**
 * Priority-ordered queue of pending requests
 * @description
 * - Highest priority dequeues first, FIFO among equal priorities
 * - Safe for concurrent use
 */
type PriorityQueue struct {
	mu    sync.Mutex
	items entryHeap
	seq   uint64
}

func New() *PriorityQueue {
	return &PriorityQueue{}
}

/**
 * Add an item with the given numeric priority
 */
func (q *PriorityQueue) Enqueue(value interface{}, priority int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	heap.Push(&q.items, &entry{value: value, priority: priority, seq: q.seq})
}

/**
 * Remove and return the highest-priority item
 * @returns {interface{}, bool} Item and true, or nil and false on an empty queue
 */
func (q *PriorityQueue) Dequeue() (interface{}, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	item := heap.Pop(&q.items).(*entry)
	return item.value, true
}

// Size returns the number of queued items.
func (q *PriorityQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue holds no items.
func (q *PriorityQueue) IsEmpty() bool {
	return q.Size() == 0
}
