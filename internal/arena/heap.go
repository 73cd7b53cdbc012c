package arena

import (
	"unsafe"

	"github.com/joshuapare/refkit/internal/layout"
)

// heapArena hands out alignment-padded slices from the Go allocator. Byte
// slices carry no alignment guarantee, so the allocation is padded by align-1
// and the first aligned interior pointer is returned. The interior pointer
// keeps the whole backing array alive.
type heapArena struct{}

func (heapArena) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	buf := make([]byte, size+align-1)
	p := unsafe.Pointer(unsafe.SliceData(buf))
	off := layout.AlignUp(uintptr(p), align) - uintptr(p)
	return unsafe.Add(p, off), nil
}

// Free is a no-op: the collector reclaims the backing array once the last
// interior pointer into it dies. The caller poisons the count word first.
func (heapArena) Free(p unsafe.Pointer, size, align uintptr) {}

func (heapArena) OffHeap() bool { return false }
