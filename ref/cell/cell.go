// Package cell provides a mutable container for Shared handles.
//
// A Cell owns exactly one count unit for the value it holds. Load hands out
// fresh clones, Store and Swap exchange ownership, and the displaced value
// is released by the cell. All operations are safe for concurrent use.
//
// Internally the cell keeps the value in raw payload-pointer form, so it
// also serves as the model for stashing handles in non-generic containers
// via the raw interchange functions.
package cell

import (
	"sync"
	"unsafe"

	"github.com/joshuapare/refkit/ref"
)

// Cell holds one Shared value and exchanges it under a lock.
//
// The zero Cell is empty and panics on use; construct with New.
type Cell[T any] struct {
	mu sync.Mutex
	p  unsafe.Pointer // owned payload pointer, one count unit
}

// New builds a cell holding s. The handle is consumed; its count unit
// belongs to the cell until displaced or released.
func New[T any](s *ref.Shared[T]) *Cell[T] {
	return &Cell[T]{p: s.IntoRaw()}
}

// Load returns a new owning handle for the stored value.
func (c *Cell[T]) Load() ref.Shared[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustHold()
	return ref.FromRawClone[T](c.p)
}

// Store replaces the stored value with s, consuming it. The displaced
// value loses the cell's count unit and is disposed if that was the last.
func (c *Cell[T]) Store(s *ref.Shared[T]) {
	old := c.exchange(s.IntoRaw())
	old.Release()
}

// Swap replaces the stored value with s, consuming it, and returns the
// previous value as an owning handle.
func (c *Cell[T]) Swap(s *ref.Shared[T]) ref.Shared[T] {
	return c.exchange(s.IntoRaw())
}

// exchange swaps the stored pointer and adopts the old one, so disposal of
// a displaced value always runs outside the lock.
func (c *Cell[T]) exchange(p unsafe.Pointer) ref.Shared[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustHold()
	old := ref.FromRaw[T](c.p)
	c.p = p
	return old
}

// CompareAndSwap replaces the stored value with new if the cell currently
// holds the same block as old. Identity is by block, as in PtrEqual, not by
// payload value. new is consumed only on success; old is only inspected.
// Reports whether the swap happened.
func (c *Cell[T]) CompareAndSwap(old ref.Shared[T], new *ref.Shared[T]) bool {
	c.mu.Lock()
	c.mustHold()
	if old.AsRaw() != c.p {
		c.mu.Unlock()
		return false
	}
	displaced := ref.FromRaw[T](c.p)
	c.p = new.IntoRaw()
	c.mu.Unlock()

	displaced.Release()
	return true
}

// Release drops the cell's count unit and empties it. Further Load, Store,
// Swap, and CompareAndSwap calls panic. Releasing a released cell is a
// no-op.
func (c *Cell[T]) Release() {
	c.mu.Lock()
	p := c.p
	c.p = nil
	c.mu.Unlock()

	if p != nil {
		s := ref.FromRaw[T](p)
		s.Release()
	}
}

func (c *Cell[T]) mustHold() {
	if c.p == nil {
		panic("cell: use of empty Cell")
	}
}
