// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ring

// Buffer is a generic fixed-capacity circular buffer. Pushing onto a full
// buffer evicts the oldest item. It is not concurrency-safe; callers guard it
// with their own lock.
type Buffer[T any] struct {
	items []T
	size  int
	leave int // Points to the oldest item.
}

// New creates a Buffer holding at most capacity items. A capacity below one
// is treated as one.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Len returns the number of items in the buffer.
func (b *Buffer[T]) Len() int {
	return b.size
}

// Cap returns the fixed capacity of the buffer.
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Push appends value as the newest item. If the buffer was full, the oldest
// item is evicted and returned with ok set to true.
func (b *Buffer[T]) Push(value T) (evicted T, ok bool) {
	if b.size == len(b.items) {
		evicted, ok = b.items[b.leave], true
		b.items[b.leave] = value
		b.leave = b.move(b.leave)
		return evicted, ok
	}

	b.items[(b.leave+b.size)%len(b.items)] = value
	b.size++
	return evicted, false
}

// At returns the i-th item counting from the oldest. It panics if i is out of
// range, like a slice index.
func (b *Buffer[T]) At(i int) T {
	if i < 0 || i >= b.size {
		panic("ring: index out of range")
	}
	return b.items[(b.leave+i)%len(b.items)]
}

// Newest returns the most recently pushed item.
func (b *Buffer[T]) Newest() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}
	return b.At(b.size - 1), true
}

// Slice copies the items into a new slice ordered from oldest to newest.
func (b *Buffer[T]) Slice() []T {
	out := make([]T, b.size)
	n := copy(out, b.items[b.leave:min(b.leave+b.size, len(b.items))])
	copy(out[n:], b.items[:b.size-n])
	return out
}

// move increments the index circularly.
func (b *Buffer[T]) move(index int) int {
	return (index + 1) % len(b.items)
}
