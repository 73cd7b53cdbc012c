package ref

import "unsafe"

// Offset is a payload-pointer representation of a shared handle: Get is a
// direct dereference with no offset arithmetic, at the cost of recomputing
// the block base on count operations. Conversions between Offset and Shared
// are pure pointer arithmetic in both directions.
type Offset[T any] struct {
	p unsafe.Pointer // payload address; nil when released
}

// IntoOffset converts s into its payload-pointer form, consuming s. No
// count traffic.
func (s *Shared[T]) IntoOffset() Offset[T] {
	mustLive(s.b, "Shared handle")
	p := unsafe.Add(s.b, payloadOff[T]())
	s.b = nil
	return Offset[T]{p: p}
}

// IntoShared converts back to the block-pointer form, consuming o. No count
// traffic.
func (o *Offset[T]) IntoShared() Shared[T] {
	mustLive(o.p, "Offset handle")
	s := Shared[T]{b: blockOfPayload[T](o.p)}
	o.p = nil
	return s
}

// Get returns the payload pointer.
func (o Offset[T]) Get() *T {
	mustLive(o.p, "Offset handle")
	return (*T)(o.p)
}

// Clone returns an additional owning handle in offset form.
func (o Offset[T]) Clone() Offset[T] {
	mustLive(o.p, "Offset handle")
	retainBlock(blockOfPayload[T](o.p))
	return Offset[T]{p: o.p}
}

// Release drops this handle's count unit and nils the handle.
func (o *Offset[T]) Release() {
	if o == nil || o.p == nil {
		return
	}
	b := blockOfPayload[T](o.p)
	o.p = nil
	releaseBlock(b)
}

// WithShared runs f with a transient Shared view of o's block, without any
// count traffic. The view borrows o's count unit: f must not release,
// consume or retain the view beyond the call.
func (o Offset[T]) WithShared(f func(Shared[T])) {
	mustLive(o.p, "Offset handle")
	f(Shared[T]{b: blockOfPayload[T](o.p)})
}
