package ref

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/refkit/internal/layout"
)

// Slice is a shared handle to a block whose payload is trailing element
// storage. The element count is fixed at allocation and recorded in the
// header, so raw round-trips recover it without a fat pointer.
type Slice[T any] struct {
	b unsafe.Pointer
}

// NewSlice copies elems into a fresh block and returns its first handle.
func NewSlice[T any](elems []T) Slice[T] { return NewSliceIn(elems, nil) }

// NewSliceIn is NewSlice with explicit allocation options.
func NewSliceIn[T any](elems []T, o *Options) Slice[T] {
	b := allocSlice[T](len(elems), o)
	copy(viewOf[T](b), elems)
	return Slice[T]{b: b}
}

// SliceOfLen builds a block of exactly n elements straight from it, writing
// elements into place as they arrive: the one-shot path for iterators whose
// length is known. The trust is verified: an iterator that ends early or
// yields more than n panics, after the partially filled block has been
// reclaimed.
func SliceOfLen[T any](n int, it Iterator[T]) Slice[T] { return SliceOfLenIn(n, it, nil) }

// SliceOfLenIn is SliceOfLen with explicit allocation options.
func SliceOfLenIn[T any](n int, it Iterator[T], o *Options) Slice[T] {
	b := allocSlice[T](n, o)
	view := viewOf[T](b)
	for i := range view {
		v, ok := it.Next()
		if !ok {
			blk := blockOf(b)
			blk.Free()
			panic(fmt.Sprintf("ref: iterator ended at %d of %d elements", i, n))
		}
		view[i] = v
	}
	if _, ok := it.Next(); ok {
		blk := blockOf(b)
		blk.Free()
		panic(fmt.Sprintf("ref: iterator yielded more than %d elements", n))
	}
	return Slice[T]{b: b}
}

// CollectSlice drains it into memory first and then allocates a block sized
// to what actually arrived: the path for iterators of unknown length.
func CollectSlice[T any](it Iterator[T]) Slice[T] { return CollectSliceIn(it, nil) }

// CollectSliceIn is CollectSlice with explicit allocation options.
func CollectSliceIn[T any](it Iterator[T], o *Options) Slice[T] {
	var vals []T
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		vals = append(vals, v)
	}
	return NewSliceIn(vals, o)
}

func allocSlice[T any](n int, o *Options) unsafe.Pointer {
	l := layoutFor[T]()
	bl, err := layout.ForSlice(l, n)
	if err != nil {
		abort("slice allocation: %v", err)
	}
	aid, did := o.resolve()
	return allocBlock(bl, uint64(n), aid, did, true)
}

func viewOf[T any](b unsafe.Pointer) []T {
	return unsafe.Slice((*T)(unsafe.Add(b, payloadOff[T]())), int(layout.Elems(b)))
}

// Len returns the element count fixed at allocation.
func (s Slice[T]) Len() int {
	mustLive(s.b, "Slice handle")
	return int(layout.Elems(s.b))
}

// At returns a pointer to element i.
func (s Slice[T]) At(i int) *T {
	mustLive(s.b, "Slice handle")
	n := int(layout.Elems(s.b))
	if i < 0 || i >= n {
		panic(fmt.Sprintf("ref: slice index %d out of range (len %d)", i, n))
	}
	return &viewOf[T](s.b)[i]
}

// View returns the element storage as a Go slice. The view aliases the
// block: it stays valid while some handle is live and must not be stored
// past the last release. Mutating through it on a shared block is a data
// race with other readers; use MakeMut.
func (s Slice[T]) View() []T {
	mustLive(s.b, "Slice handle")
	return viewOf[T](s.b)
}

// Clone returns an additional owning handle to the same block.
func (s Slice[T]) Clone() Slice[T] {
	mustLive(s.b, "Slice handle")
	retainBlock(s.b)
	return Slice[T]{b: s.b}
}

// Release drops this handle's count unit and nils the handle.
func (s *Slice[T]) Release() {
	if s == nil || s.b == nil {
		return
	}
	b := s.b
	s.b = nil
	releaseBlock(b)
}

// IsUnique reports whether this handle is the only one to its block.
func (s Slice[T]) IsUnique() bool {
	mustLive(s.b, "Slice handle")
	return layout.LoadCount(s.b) == 1
}

// MakeMut returns element storage that is safe to mutate, copying the
// block first when it is shared. See Shared.MakeMut for the contract.
func (s *Slice[T]) MakeMut() []T {
	mustLive(s.b, "Slice handle")
	if layout.LoadCount(s.b) == 1 {
		return viewOf[T](s.b)
	}
	n := int(layout.Elems(s.b))
	bl, err := layout.ForSlice(layoutFor[T](), n)
	if err != nil {
		abort("slice allocation: %v", err)
	}
	fresh := allocBlock(bl, uint64(n), layout.Arena(s.b), layout.Disp(s.b), true)
	copy(viewOf[T](fresh), viewOf[T](s.b))
	old := s.b
	s.b = fresh
	releaseBlock(old)
	return viewOf[T](fresh)
}

// CloneMany batches n future clones into one count increment, like
// Shared.CloneMany.
func (s Slice[T]) CloneMany(n int) *SliceCloneIter[T] {
	mustLive(s.b, "Slice handle")
	if n < 0 {
		panic(fmt.Sprintf("ref: CloneMany of %d handles", n))
	}
	if n > 0 {
		retainBlockN(s.b, int64(n))
	}
	return &SliceCloneIter[T]{src: s.Clone(), left: int64(n)}
}

// SliceCloneIter is CloneIter's counterpart for slice handles.
type SliceCloneIter[T any] struct {
	src    Slice[T]
	left   int64
	closed bool
}

// Next hands out one prepaid handle.
func (it *SliceCloneIter[T]) Next() (Slice[T], bool) {
	if it.closed || it.left == 0 {
		return Slice[T]{}, false
	}
	it.left--
	return Slice[T]{b: it.src.b}, true
}

// Remaining reports how many prepaid handles have not been yielded.
func (it *SliceCloneIter[T]) Remaining() int {
	return int(it.left)
}

// Close returns the unconsumed remainder in one count adjustment and drops
// the iterator's own handle. Exactly once.
func (it *SliceCloneIter[T]) Close() {
	if it.closed {
		return
	}
	it.closed = true
	if it.left > 0 {
		layout.AddCount(it.src.b, -it.left)
		it.left = 0
	}
	it.src.Release()
}

// SlicePtrEqual reports whether a and b own the same block.
func SlicePtrEqual[T any](a, b Slice[T]) bool {
	return a.b != nil && a.b == b.b
}

// IntoRawSlice consumes s and returns its element base pointer. The count
// unit travels with the pointer; the element count stays in the header.
func (s *Slice[T]) IntoRawSlice() unsafe.Pointer {
	mustLive(s.b, "Slice handle")
	p := unsafe.Add(s.b, payloadOff[T]())
	s.b = nil
	return p
}

// SliceFromRaw adopts an element base pointer produced by IntoRawSlice,
// taking over its count unit. Len is recovered from the header. Panics if
// the pointer leads to a scalar block.
func SliceFromRaw[T any](p unsafe.Pointer) Slice[T] {
	if p == nil {
		panic("ref: SliceFromRaw of nil pointer")
	}
	b := blockOfPayload[T](p)
	if !layout.IsSlice(b) {
		panic("ref: SliceFromRaw of a scalar block pointer")
	}
	return Slice[T]{b: b}
}
