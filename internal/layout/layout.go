// Package layout computes block layouts for reference-counted allocations.
//
// A block is a single contiguous allocation: a fixed header (reference count
// plus block metadata) followed by payload storage. The payload begins at the
// first correctly aligned offset after the header, so the same constant
// arithmetic converts between block pointers and payload pointers in both
// directions.
//
// Payload types must be pointer-free: block interiors are never traced by the
// collector, so a Go pointer stored there would not keep its referent alive.
// Of rejects types that contain pointers anywhere in their representation.
package layout

import (
	"fmt"
	"math"
	"math/bits"
	"reflect"
	"sync"
)

// Layout describes the size and alignment of a payload type.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// Block describes where a payload lives inside its allocation.
type Block struct {
	// Total is the full allocation size in bytes, including the header,
	// alignment padding, and the trailing guard byte.
	Total uintptr

	// Offset is the payload offset from the block base.
	Offset uintptr

	// Align is the required alignment of the block base.
	Align uintptr
}

var pointerFreeCache sync.Map // reflect.Type -> bool

// Of returns the payload layout for t, or ErrPointerful when t contains
// pointers anywhere in its representation.
func Of(t reflect.Type) (Layout, error) {
	if !PointerFree(t) {
		return Layout{}, fmt.Errorf("%w: %s", ErrPointerful, t)
	}
	return Layout{Size: t.Size(), Align: uintptr(t.Align())}, nil
}

// PointerFree reports whether values of type t contain no Go pointers.
// Results are cached per type.
func PointerFree(t reflect.Type) bool {
	if ok, hit := pointerFreeCache.Load(t); hit {
		return ok.(bool)
	}
	ok := pointerFree(t)
	pointerFreeCache.Store(t, ok)
	return ok
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return pointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		// Pointers, maps, chans, slices, strings, interfaces, funcs and
		// unsafe.Pointer all carry addresses the collector would need to see.
		return false
	}
}

// AlignUp returns n aligned up to the next multiple of align.
// align must be a power of two.
//
// Example:
//
//	AlignUp(33, 8)  = 40
//	AlignUp(40, 8)  = 40
//	AlignUp(33, 16) = 48
func AlignUp(n, align uintptr) uintptr {
	mask := align - 1
	return (n + mask) &^ mask
}

// PayloadOffset returns the payload offset for a payload alignment of align.
// The offset is the header size rounded up to the payload's alignment.
func PayloadOffset(align uintptr) uintptr {
	return AlignUp(HeaderSize, align)
}

// ForScalar returns the block layout for a single value of layout l.
func ForScalar(l Layout) Block {
	return blockFor(l, payloadBytes(l.Size))
}

// ForSlice returns the block layout for n contiguous elements of layout l.
// It fails with ErrTooLarge when the element storage would overflow.
func ForSlice(l Layout, n int) (Block, error) {
	if n < 0 {
		return Block{}, fmt.Errorf("%w: negative length %d", ErrTooLarge, n)
	}
	if l.Size != 0 && uintptr(n) > (math.MaxInt-HeaderSize-64)/l.Size {
		return Block{}, fmt.Errorf("%w: %d elements of %d bytes", ErrTooLarge, n, l.Size)
	}
	return blockFor(l, payloadBytes(uintptr(n)*l.Size)), nil
}

func blockFor(l Layout, payload uintptr) Block {
	align := l.Align
	if align < headerAlign {
		align = headerAlign
	}
	off := PayloadOffset(l.Align)
	return Block{
		// One trailing guard byte keeps tagged payload pointers strictly
		// inside the allocation.
		Total:  off + payload + 1,
		Offset: off,
		Align:  align,
	}
}

// payloadBytes reserves at least one byte so a payload pointer is always an
// interior pointer, even for zero-sized payloads.
func payloadBytes(n uintptr) uintptr {
	if n == 0 {
		return 1
	}
	return n
}

// AlignLog2 returns log2(align) for a power-of-two alignment, for compact
// storage in the header flags.
func AlignLog2(align uintptr) uint16 {
	return uint16(bits.TrailingZeros64(uint64(align)))
}

// AlignFromLog2 is the inverse of AlignLog2.
func AlignFromLog2(log2 uint16) uintptr {
	return uintptr(1) << log2
}
