// Package dispose provides reusable disposal strategies for ref blocks.
//
// A strategy is any ref.Disposer; the ones here cover the common shapes.
// Free returns memory immediately, Leak never does, Background moves the
// work off the releasing goroutine, and Logged records each disposal on
// its way to another strategy. Strategies compose: wrap Background around
// Logged around Free, register the result once, and pass it to every
// allocation that should tear down that way.
package dispose

import "github.com/joshuapare/refkit/ref"

// Free returns blocks to their arena immediately. It is the behavior a
// nil Options.Disposer selects, exported so wrappers can name it.
var Free ref.Disposer = freeStrategy{}

type freeStrategy struct{}

func (freeStrategy) Dispose(b ref.Block) { b.Free() }

// Leak keeps every block it receives: the final release becomes a no-op
// for the memory. Heap blocks return to the collector once the last raw
// pointer is gone; mmap blocks stay mapped for the life of the process.
var Leak ref.Disposer = leakStrategy{}

type leakStrategy struct{}

func (leakStrategy) Dispose(ref.Block) {}

// Func adapts f into a Disposer. Each call mints a distinct strategy
// identity, so adapt once and reuse the value rather than wrapping the
// same closure per allocation.
func Func(f func(ref.Block)) ref.Disposer {
	return &funcStrategy{f: f}
}

type funcStrategy struct{ f func(ref.Block) }

func (d *funcStrategy) Dispose(b ref.Block) { d.f(b) }
