package ref

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/refkit/internal/layout"
)

// Unique is a handle to a block with exactly one owner. Mutation through Get
// needs no synchronization, and Shareable downgrades to a Shared handle for
// free because the count is already 1.
type Unique[T any] struct {
	b unsafe.Pointer
}

// NewUnique allocates a block for v and returns its sole handle.
func NewUnique[T any](v T) Unique[T] { return NewUniqueIn(v, nil) }

// NewUniqueIn is NewUnique with explicit allocation options.
func NewUniqueIn[T any](v T, o *Options) Unique[T] {
	s := NewIn(v, o)
	return Unique[T]{b: s.b}
}

// Get returns the payload pointer. Writing through it is always safe: no
// other handle exists.
func (u Unique[T]) Get() *T {
	mustLive(u.b, "Unique handle")
	return payloadOf[T](u.b)
}

// Shareable downgrades to a shared handle, consuming u. No count traffic:
// the single count unit transfers to the returned handle. Panics if the
// block's count is not 1, which can only happen through raw-pointer misuse.
func (u *Unique[T]) Shareable() Shared[T] {
	mustLive(u.b, "Unique handle")
	if n := layout.LoadCount(u.b); n != 1 {
		panic(fmt.Sprintf("ref: Unique handle to block with count %d", n))
	}
	s := Shared[T]{b: u.b}
	u.b = nil
	return s
}

// Release frees the block through its disposer and nils the handle.
// Releasing an already released handle is a no-op.
func (u *Unique[T]) Release() {
	if u == nil || u.b == nil {
		return
	}
	b := u.b
	u.b = nil
	releaseBlock(b)
}

// TryUnique upgrades a shared handle to a Unique one when its count is 1.
// On success s is consumed. On failure s is untouched and still owns its
// count unit; ok is false. The success check cannot race: a count of 1
// means s is the only handle, and new handles require an existing one.
func (s *Shared[T]) TryUnique() (u Unique[T], ok bool) {
	mustLive(s.b, "Shared handle")
	if layout.LoadCount(s.b) != 1 {
		return Unique[T]{}, false
	}
	u = Unique[T]{b: s.b}
	s.b = nil
	return u, true
}
