package stream

import (
	"sync"

	"github.com/go-theft-craft/voxelstream/pkg/world/chunk"
)

// Queue is a FIFO of chunk keys waiting to load. A key stays a member from Push
// until Done, covering the time the loader spends resolving it, so a key is
// never queued twice while its load is in flight.
type Queue struct {
	mu      sync.Mutex
	keys    []chunk.Key
	members map[chunk.Key]struct{}
	wake    chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{
		members: make(map[chunk.Key]struct{}),
		wake:    make(chan struct{}, 1),
	}
}

// Push appends key unless it is already queued or in flight.
func (q *Queue) Push(key chunk.Key) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.members[key]; ok {
		return false
	}
	q.members[key] = struct{}{}
	q.keys = append(q.keys, key)
	q.signal()
	return true
}

// Pop removes the oldest key. The key remains a member until Done.
func (q *Queue) Pop() (chunk.Key, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.keys) == 0 {
		return 0, false
	}
	key := q.keys[0]
	q.keys = q.keys[1:]
	return key, true
}

// Done releases a popped key.
func (q *Queue) Done(key chunk.Key) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.members, key)
}

// Pending reports whether key is queued or in flight.
func (q *Queue) Pending(key chunk.Key) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.members[key]
	return ok
}

// Len returns the number of queued keys, excluding in-flight ones.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.keys)
}

// Clear drops every queued key. In-flight keys stay members until Done.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, key := range q.keys {
		delete(q.members, key)
	}
	q.keys = nil
}

// Wake returns a channel that receives after a Push.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
