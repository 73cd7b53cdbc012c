package ref

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Union packs a shared handle to one of two payload types into a single
// word. The discriminant lives in the low pointer bit, which is why both
// payload types must have alignment of at least 2; constructors panic
// otherwise. The tagged word remains an interior pointer into the block
// (payloads start past the header and every block carries a trailing guard
// byte), so collector liveness is preserved.
type Union[A, B any] struct {
	w unsafe.Pointer // payload address, low bit set for the second arm
}

// UnionFirst packs s as the first arm, consuming it.
func UnionFirst[A, B any](s *Shared[A]) Union[A, B] {
	mustLive(s.b, "Shared handle")
	assertUnionAlign[A]()
	assertUnionAlign[B]()
	p := unsafe.Add(s.b, payloadOff[A]())
	s.b = nil
	return Union[A, B]{w: p}
}

// UnionSecond packs s as the second arm, consuming it.
func UnionSecond[A, B any](s *Shared[B]) Union[A, B] {
	mustLive(s.b, "Shared handle")
	assertUnionAlign[A]()
	assertUnionAlign[B]()
	p := unsafe.Add(s.b, payloadOff[B]()+1)
	s.b = nil
	return Union[A, B]{w: p}
}

func assertUnionAlign[T any]() {
	var zero T
	if unsafe.Alignof(zero) < 2 {
		panic(fmt.Sprintf("ref: union payload %s has alignment %d, need at least 2",
			reflect.TypeFor[T](), unsafe.Alignof(zero)))
	}
}

// IsFirst reports whether the first arm is stored.
func (u Union[A, B]) IsFirst() bool {
	mustLive(u.w, "Union handle")
	return uintptr(u.w)&1 == 0
}

// IsSecond reports whether the second arm is stored.
func (u Union[A, B]) IsSecond() bool { return !u.IsFirst() }

// First returns a borrowed view of the first arm, or ok false when the
// second is stored.
func (u Union[A, B]) First() (Borrow[A], bool) {
	if u.IsFirst() {
		return Borrow[A]{p: u.w}, true
	}
	return Borrow[A]{}, false
}

// Second returns a borrowed view of the second arm, or ok false when the
// first is stored.
func (u Union[A, B]) Second() (Borrow[B], bool) {
	if u.IsFirst() {
		return Borrow[B]{}, false
	}
	return Borrow[B]{p: unsafe.Add(u.w, -1)}, true
}

// CloneFirst materializes an owning handle to the first arm.
func (u Union[A, B]) CloneFirst() (Shared[A], bool) {
	v, ok := u.First()
	if !ok {
		return Shared[A]{}, false
	}
	return v.Shared(), true
}

// CloneSecond materializes an owning handle to the second arm.
func (u Union[A, B]) CloneSecond() (Shared[B], bool) {
	v, ok := u.Second()
	if !ok {
		return Shared[B]{}, false
	}
	return v.Shared(), true
}

// Clone returns an additional owning handle to the stored arm's block. The
// discriminant travels with it.
func (u Union[A, B]) Clone() Union[A, B] {
	mustLive(u.w, "Union handle")
	retainBlock(u.block())
	return u
}

// Release drops the stored arm's count unit and nils the handle.
func (u *Union[A, B]) Release() {
	if u == nil || u.w == nil {
		return
	}
	b := u.block()
	u.w = nil
	releaseBlock(b)
}

func (u Union[A, B]) block() unsafe.Pointer {
	if uintptr(u.w)&1 == 0 {
		return blockOfPayload[A](u.w)
	}
	return blockOfPayload[B](unsafe.Add(u.w, -1))
}
