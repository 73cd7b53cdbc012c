package ref

import "unsafe"

// Raw-pointer interchange. Handles cross a foreign boundary as payload
// pointers: IntoRaw surrenders a handle's count unit to the raw pointer,
// FromRaw adopts it back, and both directions are pure pointer arithmetic.
// A count unit that crosses via IntoRaw must come back via exactly one
// FromRaw, or the block leaks.

// IntoRaw consumes s and returns its payload pointer. The handle's count
// unit travels with the pointer.
func (s *Shared[T]) IntoRaw() unsafe.Pointer {
	mustLive(s.b, "Shared handle")
	p := unsafe.Add(s.b, payloadOff[T]())
	s.b = nil
	return p
}

// AsRaw returns the payload pointer without consuming the handle: a borrow
// for identity checks and boundary calls that do not take ownership.
func (s Shared[T]) AsRaw() unsafe.Pointer {
	mustLive(s.b, "Shared handle")
	return unsafe.Add(s.b, payloadOff[T]())
}

// FromRaw adopts a payload pointer produced by IntoRaw, taking over its
// count unit. The pointer must have come from a handle of the same payload
// type.
func FromRaw[T any](p unsafe.Pointer) Shared[T] {
	if p == nil {
		panic("ref: FromRaw of nil pointer")
	}
	return Shared[T]{b: blockOfPayload[T](p)}
}

// FromRawClone materializes a new owning handle from a borrowed payload
// pointer: one count increment, the original owner keeps its unit.
func FromRawClone[T any](p unsafe.Pointer) Shared[T] {
	if p == nil {
		panic("ref: FromRawClone of nil pointer")
	}
	b := blockOfPayload[T](p)
	retainBlock(b)
	return Shared[T]{b: b}
}
