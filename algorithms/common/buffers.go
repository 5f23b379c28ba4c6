package common

// RingBuffer is a fixed-capacity FIFO that overwrites its oldest element
// once full. It is not safe for concurrent use.
type RingBuffer[T any] struct {
	buffer   []T
	size     int
	writePos int
	readPos  int
	count    int
}

// NewRingBuffer creates a ring buffer holding at most size elements
func NewRingBuffer[T any](size int) *RingBuffer[T] {
	if size < 1 {
		size = 1
	}
	return &RingBuffer[T]{
		buffer: make([]T, size),
		size:   size,
	}
}

// Push appends an element, evicting the oldest one when the buffer is full.
// It reports whether an element was evicted.
func (rb *RingBuffer[T]) Push(item T) bool {
	rb.buffer[rb.writePos] = item
	rb.writePos = (rb.writePos + 1) % rb.size
	if rb.count < rb.size {
		rb.count++
		return false
	}
	// Buffer full, oldest slot was just overwritten
	rb.readPos = (rb.readPos + 1) % rb.size
	return true
}

// Snapshot copies the buffered elements ordered oldest to newest
func (rb *RingBuffer[T]) Snapshot() []T {
	out := make([]T, rb.count)
	pos := rb.readPos
	for i := range out {
		out[i] = rb.buffer[pos]
		pos = (pos + 1) % rb.size
	}
	return out
}

// Latest returns the most recently pushed element
func (rb *RingBuffer[T]) Latest() (T, bool) {
	var zero T
	if rb.count == 0 {
		return zero, false
	}
	return rb.buffer[(rb.writePos-1+rb.size)%rb.size], true
}

// Len returns number of buffered elements
func (rb *RingBuffer[T]) Len() int {
	return rb.count
}

// Cap returns the fixed capacity
func (rb *RingBuffer[T]) Cap() int {
	return rb.size
}

// Clear empties the buffer
func (rb *RingBuffer[T]) Clear() {
	var zero T
	for i := range rb.buffer {
		rb.buffer[i] = zero
	}
	rb.writePos = 0
	rb.readPos = 0
	rb.count = 0
}

// IsFull returns true if buffer is full
func (rb *RingBuffer[T]) IsFull() bool {
	return rb.count == rb.size
}
