package core

import (
	"container/heap"
	"sync"
)

// Item is anything that can be ordered inside a PriorityQueue.
type Item interface {
	Less(Item) bool
}

type itemHeap []Item

func (h itemHeap) Len() int           { return len(h) }
func (h itemHeap) Less(i, j int) bool { return h[i].Less(h[j]) }
func (h itemHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x any)        { *h = append(*h, x.(Item)) }
func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// PriorityQueue is a concurrency safe min-heap. The smallest item by Less is popped first.
type PriorityQueue struct {
	mu       sync.Mutex
	items    itemHeap
	watchers []chan Item
}

// NewPriorityQueue builds a queue from an initial, unordered set of items.
func NewPriorityQueue(data []Item) *PriorityQueue {
	q := &PriorityQueue{items: append(itemHeap(nil), data...)}
	heap.Init(&q.items)
	return q
}

// Push inserts an item. Every channel returned by PopLock receives the next popped item.
func (q *PriorityQueue) Push(item Item) {
	q.mu.Lock()
	heap.Push(&q.items, item)
	watchers := q.watchers
	q.mu.Unlock()

	for _, ch := range watchers {
		go func(ch chan Item) {
			if next := q.Pop(); next != nil {
				ch <- next
			}
		}(ch)
	}
}

// PopLock returns a channel that is fed one popped item per pushed item.
func (q *PriorityQueue) PopLock() <-chan Item {
	ch := make(chan Item)

	q.mu.Lock()
	q.watchers = append(q.watchers, ch)
	q.mu.Unlock()

	return ch
}

// Pop removes and returns the smallest item, or nil when the queue is empty.
func (q *PriorityQueue) Pop() Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	return heap.Pop(&q.items).(Item)
}

// Peek returns the smallest item without removing it.
func (q *PriorityQueue) Peek() Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// Len returns the number of queued items
func (q *PriorityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
