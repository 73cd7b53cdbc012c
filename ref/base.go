package ref

import (
	"fmt"
	"math"
	"os"
	"reflect"
	"unsafe"

	// Handles hold raw block addresses; this package refuses to build on a
	// runtime whose collector moves heap objects.
	_ "go4.org/unsafe/assume-no-moving-gc"

	"github.com/joshuapare/refkit/internal/arena"
	"github.com/joshuapare/refkit/internal/layout"
)

// MaxCount is the soft limit on a block's reference count. A clone that
// would push the count past it aborts the process: a count this size can
// only come from a leak amplified in a loop, and wrapping it would free
// live blocks.
const MaxCount = math.MaxInt64

// abortf terminates the process on unrecoverable faults. Swapped out by
// tests via SetAbort.
var abortf = func(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "refkit: "+format+"\n", args...)
	os.Exit(2)
}

func abort(format string, args ...any) {
	abortf(format, args...)
	panic("refkit: abort handler returned")
}

// layoutFor validates T as a payload type and returns its layout. Used on
// allocation paths only; deref paths use payloadOff, which folds to a
// constant per instantiation.
func layoutFor[T any]() layout.Layout {
	l, err := layout.Of(reflect.TypeFor[T]())
	if err != nil {
		panic(fmt.Sprintf("ref: invalid payload type %s: %v", reflect.TypeFor[T](), err))
	}
	return l
}

// payloadOff returns the block-to-payload offset for T.
func payloadOff[T any]() uintptr {
	var zero T
	return layout.PayloadOffset(unsafe.Alignof(zero))
}

func payloadOf[T any](b unsafe.Pointer) *T {
	return (*T)(unsafe.Add(b, payloadOff[T]()))
}

func blockOfPayload[T any](p unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(p, -int(payloadOff[T]()))
}

func mustLive(p unsafe.Pointer, what string) {
	if p == nil {
		panic("ref: use of released " + what)
	}
}

// allocBlock obtains a zeroed block and initializes its header. The count
// word is 1 before the block pointer escapes. Allocation failure aborts.
func allocBlock(bl layout.Block, elems uint64, aid uint16, did uint32, slice bool) unsafe.Pointer {
	a, ok := arena.Get(aid)
	if !ok {
		panic(fmt.Sprintf("ref: unknown arena id %d", aid))
	}
	p, err := a.Alloc(bl.Total, bl.Align)
	if err != nil || p == nil {
		abort("allocation of %d bytes failed: %v", bl.Total, err)
	}
	layout.Init(p, bl.Total, elems, did, aid, layout.Flags(bl.Align, slice))
	return p
}

// retainBlock adds one count unit, aborting past the soft limit.
func retainBlock(b unsafe.Pointer) {
	old := layout.AddCount(b, 1) - 1
	if old <= 0 {
		panic(countFault(old, "clone"))
	}
	if old >= MaxCount {
		abort("reference count overflow (count %d)", old)
	}
}

// retainBlockN batches n count units into one adjustment.
func retainBlockN(b unsafe.Pointer, n int64) {
	old := layout.AddCount(b, n) - n
	if old <= 0 {
		panic(countFault(old, "clone"))
	}
	if old > MaxCount-n {
		abort("reference count overflow (count %d + %d)", old, n)
	}
}

// releaseBlock drops one count unit. The final release hands the block to
// its disposer; the atomic decrement orders all prior payload writes before
// the disposer observes the block.
func releaseBlock(b unsafe.Pointer) {
	switch n := layout.AddCount(b, -1); {
	case n > 0:
	case n == 0:
		disposerAt(layout.Disp(b)).Dispose(blockOf(b))
	default:
		panic(countFault(n+1, "release"))
	}
}

func countFault(old int64, op string) string {
	if old < layout.Poison/2 {
		return fmt.Sprintf("ref: %s of freed block (count %d)", op, old)
	}
	return fmt.Sprintf("ref: %s of dead block (count %d)", op, old)
}
