package ref

import "github.com/joshuapare/refkit/internal/layout"

// Test hooks. Counts are runtime state and deliberately not public API;
// tests reach them here.

func CountOf[T any](s Shared[T]) int64 { return layout.LoadCount(s.b) }

func UniqueCountOf[T any](u Unique[T]) int64 { return layout.LoadCount(u.b) }

func SliceCountOf[T any](s Slice[T]) int64 { return layout.LoadCount(s.b) }

func StrCountOf(s Str) int64 { return layout.LoadCount(s.s.b) }

func UnionCountOf[A, B any](u Union[A, B]) int64 { return layout.LoadCount(u.block()) }

func OffsetCountOf[T any](o Offset[T]) int64 {
	return layout.LoadCount(blockOfPayload[T](o.p))
}

// MakeUniqueUnchecked builds a Unique over s's block without the count
// check, to exercise the misuse guards.
func MakeUniqueUnchecked[T any](s Shared[T]) Unique[T] { return Unique[T]{b: s.b} }

// SetAbort swaps the abort handler and returns a restore func.
func SetAbort(f func(format string, args ...any)) func() {
	old := abortf
	abortf = f
	return func() { abortf = old }
}
