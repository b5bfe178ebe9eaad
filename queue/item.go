package queue

// Item is a queue payload which is either a value or the end-of-stream
// marker. The marker flows through the queue like any other item, so a
// stage recognizes termination by extracting it, not by a side channel.
type Item[T any] struct {
	value T
	end   bool
}

// Some wraps a value into an item.
func Some[T any](v T) Item[T] {
	return Item[T]{value: v}
}

// End returns the end-of-stream marker. Every producing stage appends
// it exactly once as its final item.
func End[T any]() Item[T] {
	return Item[T]{end: true}
}

// Get returns the wrapped value. ok is false for the end-of-stream
// marker.
func (i Item[T]) Get() (v T, ok bool) {
	return i.value, !i.end
}
