package ref

import (
	"fmt"

	"github.com/joshuapare/refkit/internal/layout"
)

// Iterator yields values until ok is false. Exhaustion is not an error,
// which is why this is not the Next() (T, error) shape used for fallible
// sources.
type Iterator[T any] interface {
	Next() (v T, ok bool)
}

// IterFunc adapts a closure to Iterator.
type IterFunc[T any] func() (T, bool)

// Next calls f.
func (f IterFunc[T]) Next() (T, bool) { return f() }

// CloneIter yields a fixed number of additional handles to one block,
// paying for all of them with a single count adjustment up front. Close
// returns whatever was not consumed in a second single adjustment.
//
// The iterator is single-goroutine; handles it yields may travel anywhere.
type CloneIter[T any] struct {
	src    Shared[T]
	left   int64
	closed bool
}

// CloneMany batches n future clones of s into one count increment. Aborts
// the process if the count would pass MaxCount. The iterator must be
// Closed; deferring the Close is the usual shape:
//
//	it := s.CloneMany(8)
//	defer it.Close()
//	for h, ok := it.Next(); ok; h, ok = it.Next() {
//	    workers <- h
//	}
func (s Shared[T]) CloneMany(n int) *CloneIter[T] {
	mustLive(s.b, "Shared handle")
	if n < 0 {
		panic(fmt.Sprintf("ref: CloneMany of %d handles", n))
	}
	if n > 0 {
		retainBlockN(s.b, int64(n))
	}
	return &CloneIter[T]{src: s.Clone(), left: int64(n)}
}

// Next hands out one prepaid handle. After the batch is exhausted or the
// iterator closed, ok is false.
func (it *CloneIter[T]) Next() (Shared[T], bool) {
	if it.closed || it.left == 0 {
		return Shared[T]{}, false
	}
	it.left--
	return Shared[T]{b: it.src.b}, true
}

// Remaining reports how many prepaid handles have not been yielded.
func (it *CloneIter[T]) Remaining() int {
	return int(it.left)
}

// Close returns the unconsumed remainder in one count adjustment and drops
// the iterator's own handle. Exactly once: further Closes are no-ops, and
// it is safe under defer even when the consumer panics mid-iteration.
func (it *CloneIter[T]) Close() {
	if it.closed {
		return
	}
	it.closed = true
	if it.left > 0 {
		// Cannot reach zero: the iterator's own handle still holds a unit.
		layout.AddCount(it.src.b, -it.left)
		it.left = 0
	}
	it.src.Release()
}
