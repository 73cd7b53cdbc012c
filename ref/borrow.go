package ref

import "unsafe"

// Borrow is a non-owning view of a shared block. It carries no count unit:
// creating and dropping views is free, and validity is bounded by some live
// owning handle, which the caller is responsible for keeping around.
type Borrow[T any] struct {
	p unsafe.Pointer // payload address
}

// Borrow returns a non-owning view of s's payload.
func (s Shared[T]) Borrow() Borrow[T] {
	mustLive(s.b, "Shared handle")
	return Borrow[T]{p: unsafe.Add(s.b, payloadOff[T]())}
}

// Get returns the payload pointer.
func (b Borrow[T]) Get() *T {
	mustLive(b.p, "Borrow view")
	return (*T)(b.p)
}

// Shared re-materializes an owning handle from the view: one count
// increment.
func (b Borrow[T]) Shared() Shared[T] {
	mustLive(b.p, "Borrow view")
	blk := blockOfPayload[T](b.p)
	retainBlock(blk)
	return Shared[T]{b: blk}
}

// BorrowRaw adopts a raw payload pointer as a borrowed view. The callee
// side of a raw-pointer boundary: the caller retains ownership and must
// keep the block alive for the duration.
func BorrowRaw[T any](p unsafe.Pointer) Borrow[T] {
	if p == nil {
		panic("ref: BorrowRaw of nil pointer")
	}
	return Borrow[T]{p: p}
}
