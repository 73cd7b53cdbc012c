package layout

import (
	"sync/atomic"
	"unsafe"
)

// header is the fixed prefix of every block. The count word sits at offset
// zero so count operations are plain atomics on the block base.
//
// Go's sync/atomic operations are sequentially consistent, which is stronger
// than the protocol requires (relaxed increments, a release decrement and an
// acquire ordering before disposal), so no additional fences appear here.
type header struct {
	count int64   // reference count; Poison after the block is freed
	size  uintptr // total block size in bytes, for returning it to the arena
	elems uint64  // element count for slice blocks
	disp  uint32  // disposer registry id
	arena uint16  // arena registry id
	flags uint16  // FlagSlice | log2(alignment)
}

// HeaderSize is the byte size of the block header.
const HeaderSize = unsafe.Sizeof(header{})

const headerAlign = unsafe.Alignof(header{})

// Header flag bits. The low byte carries log2 of the block alignment.
const (
	FlagSlice     uint16 = 1 << 15
	flagAlignBits uint16 = 0xff
)

// Poison is stored in the count word when a block is returned to its arena.
// Count operations that observe it fail loudly instead of corrupting reused
// memory.
const Poison int64 = -0x6b6b6b6b6b6b6b6b

func hdr(b unsafe.Pointer) *header { return (*header)(b) }

// Init writes the block header. The count word is published first, before
// any other field, so a block pointer never escapes with an unset count.
func Init(b unsafe.Pointer, total uintptr, elems uint64, disp uint32, arena uint16, flags uint16) {
	h := hdr(b)
	atomic.StoreInt64(&h.count, 1)
	h.size = total
	h.elems = elems
	h.disp = disp
	h.arena = arena
	h.flags = flags
}

// AddCount atomically adds delta to the count and returns the new value.
func AddCount(b unsafe.Pointer, delta int64) int64 {
	return atomic.AddInt64(&hdr(b).count, delta)
}

// LoadCount atomically reads the count.
func LoadCount(b unsafe.Pointer) int64 {
	return atomic.LoadInt64(&hdr(b).count)
}

// StoreCount atomically overwrites the count. Used to poison freed blocks.
func StoreCount(b unsafe.Pointer, v int64) {
	atomic.StoreInt64(&hdr(b).count, v)
}

// Size returns the total block size recorded at allocation.
func Size(b unsafe.Pointer) uintptr { return hdr(b).size }

// Elems returns the element count of a slice block (zero for scalars).
func Elems(b unsafe.Pointer) uint64 { return hdr(b).elems }

// Disp returns the disposer registry id.
func Disp(b unsafe.Pointer) uint32 { return hdr(b).disp }

// Arena returns the arena registry id.
func Arena(b unsafe.Pointer) uint16 { return hdr(b).arena }

// IsSlice reports whether the block holds trailing element storage.
func IsSlice(b unsafe.Pointer) bool { return hdr(b).flags&FlagSlice != 0 }

// BlockAlign returns the block alignment recorded at allocation.
func BlockAlign(b unsafe.Pointer) uintptr {
	return AlignFromLog2(hdr(b).flags & flagAlignBits)
}

// Flags builds the header flag word for a block layout.
func Flags(align uintptr, slice bool) uint16 {
	f := AlignLog2(align)
	if slice {
		f |= FlagSlice
	}
	return f
}
