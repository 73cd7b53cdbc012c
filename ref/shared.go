package ref

import (
	"unsafe"

	"github.com/joshuapare/refkit/internal/layout"
)

// Shared is an atomically reference-counted handle to a value in block
// storage. The zero value is a released handle; every live handle came from
// a constructor or Clone and owns one count unit.
type Shared[T any] struct {
	b unsafe.Pointer // block base; nil when released
}

// New allocates a block for v with default options and returns its first
// handle. The count starts at 1.
func New[T any](v T) Shared[T] { return NewIn(v, nil) }

// NewIn is New with explicit allocation options (nil means defaults).
func NewIn[T any](v T, o *Options) Shared[T] {
	l := layoutFor[T]()
	aid, did := o.resolve()
	b := allocBlock(layout.ForScalar(l), 0, aid, did, false)
	*payloadOf[T](b) = v
	return Shared[T]{b: b}
}

// Get returns the payload pointer. The pointee stays valid until the last
// handle to the block is released.
func (s Shared[T]) Get() *T {
	mustLive(s.b, "Shared handle")
	return payloadOf[T](s.b)
}

// Clone returns an additional owning handle to the same block. Aborts the
// process if the count would pass MaxCount.
func (s Shared[T]) Clone() Shared[T] {
	mustLive(s.b, "Shared handle")
	retainBlock(s.b)
	return Shared[T]{b: s.b}
}

// Release drops this handle's count unit and nils the handle. The final
// release hands the block to its disposer exactly once. Releasing an
// already released handle is a no-op.
func (s *Shared[T]) Release() {
	if s == nil || s.b == nil {
		return
	}
	b := s.b
	s.b = nil
	releaseBlock(b)
}

// IsUnique reports whether this handle is the only one to its block. A true
// result is stable: no other goroutine can mint handles without one to
// clone from.
func (s Shared[T]) IsUnique() bool {
	mustLive(s.b, "Shared handle")
	return layout.LoadCount(s.b) == 1
}

// MakeMut returns a payload pointer that is safe to mutate. A uniquely held
// block is returned as is; a shared one is replaced by a fresh copy with
// count 1 (inheriting the block's arena and disposer), and the old block
// loses this handle's count unit. The handle may change identity: AsRaw
// observes a different address after a copy.
func (s *Shared[T]) MakeMut() *T {
	mustLive(s.b, "Shared handle")
	if layout.LoadCount(s.b) == 1 {
		return payloadOf[T](s.b)
	}
	fresh := allocBlock(layout.ForScalar(layoutFor[T]()), 0, layout.Arena(s.b), layout.Disp(s.b), false)
	*payloadOf[T](fresh) = *payloadOf[T](s.b)
	old := s.b
	s.b = fresh
	releaseBlock(old)
	return payloadOf[T](fresh)
}

// UnwrapOrClone returns the payload value and releases the handle: a move
// when the handle was unique, a copy plus decrement otherwise.
func (s *Shared[T]) UnwrapOrClone() T {
	mustLive(s.b, "Shared handle")
	v := *payloadOf[T](s.b)
	s.Release()
	return v
}

// PtrEqual reports whether a and b own the same block. Released handles
// compare unequal to everything, including each other.
func PtrEqual[T any](a, b Shared[T]) bool {
	return a.b != nil && a.b == b.b
}
