package dispose_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuapare/refkit/dispose"
	"github.com/joshuapare/refkit/ref"
)

// countingDisposer records disposals and frees the block.
type countingDisposer struct {
	calls atomic.Int64
}

func (d *countingDisposer) Dispose(b ref.Block) {
	d.calls.Add(1)
	b.Free()
}

func TestFree_ReturnsBlock(t *testing.T) {
	s := ref.NewIn(5, &ref.Options{Disposer: dispose.Free})
	stale := s
	s.Release()

	assert.Panics(t, func() { stale.Clone() }, "freed blocks are poisoned")
}

func TestLeak_KeepsBlock(t *testing.T) {
	s := ref.NewIn(6, &ref.Options{Disposer: dispose.Leak})
	stale := s
	s.Release()

	// The memory is deliberately kept, so the payload stays readable
	// through an old handle copy. Cloning is still a fault: the count is
	// gone even though the bytes are not.
	assert.Equal(t, 6, *stale.Get())
	assert.Panics(t, func() { stale.Clone() })
}

func TestFunc_AdaptsClosure(t *testing.T) {
	var size uintptr
	d := dispose.Func(func(b ref.Block) {
		size = b.Size()
		b.Free()
	})

	s := ref.NewIn(uint32(1), &ref.Options{Disposer: d})
	s.Release()
	assert.NotZero(t, size, "closure ran with the block")
}

func TestFunc_DistinctIdentities(t *testing.T) {
	f := func(b ref.Block) { b.Free() }
	assert.NotSame(t, dispose.Func(f), dispose.Func(f),
		"each adaptation is its own strategy")
}
