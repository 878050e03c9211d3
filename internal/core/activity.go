package core

import "time"

// RingBuffer is a fixed-capacity FIFO. Pushing onto a full buffer evicts the
// oldest element. Not safe for concurrent use.
type RingBuffer[T any] struct {
	data  []T
	head  int // next write position
	tail  int // oldest element
	count int
}

// NewRingBuffer returns a buffer holding at most capacity elements.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &RingBuffer[T]{data: make([]T, capacity)}
}

// Push appends item, evicting the oldest element when full.
func (r *RingBuffer[T]) Push(item T) {
	r.data[r.head] = item
	r.head = (r.head + 1) % len(r.data)
	if r.count == len(r.data) {
		r.tail = (r.tail + 1) % len(r.data)
		return
	}
	r.count++
}

// Slice returns the elements oldest first. The result is a copy.
func (r *RingBuffer[T]) Slice() []T {
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.data[(r.tail+i)%len(r.data)]
	}
	return out
}

// Len returns the number of held elements.
func (r *RingBuffer[T]) Len() int { return r.count }

// Cap returns the maximum number of held elements.
func (r *RingBuffer[T]) Cap() int { return len(r.data) }

// ActivityLog keeps the most recent human-readable events. It is a side
// channel for presentation and is never consulted by history or the index.
type ActivityLog struct {
	buf   *RingBuffer[Activity]
	nowFn func() time.Time
}

// NewActivityLog returns a log bounded to capacity entries.
func NewActivityLog(capacity int) *ActivityLog {
	return &ActivityLog{
		buf:   NewRingBuffer[Activity](capacity),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// Log records message.
func (a *ActivityLog) Log(message string) Activity {
	entry := Activity{Message: message, RecordedAt: a.nowFn()}
	a.buf.Push(entry)
	return entry
}

// Entries returns the logged activities, newest last.
func (a *ActivityLog) Entries() []Activity { return a.buf.Slice() }

// Len returns the number of retained entries.
func (a *ActivityLog) Len() int { return a.buf.Len() }
