package cell_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/refkit/ref"
	"github.com/joshuapare/refkit/ref/cell"
)

// countingDisposer records disposals and frees the block.
type countingDisposer struct {
	calls atomic.Int64
}

func (d *countingDisposer) Dispose(b ref.Block) {
	d.calls.Add(1)
	b.Free()
}

func TestCell_NewConsumesHandle(t *testing.T) {
	s := ref.New(7)
	c := cell.New(&s)

	assert.Panics(t, func() { s.Get() }, "handle is consumed by the cell")

	l := c.Load()
	assert.Equal(t, 7, *l.Get())
	l.Release()
	c.Release()
}

func TestCell_LoadClones(t *testing.T) {
	d := &countingDisposer{}
	s := ref.NewIn(11, &ref.Options{Disposer: d})
	c := cell.New(&s)

	l1 := c.Load()
	l2 := c.Load()
	require.True(t, ref.PtrEqual(l1, l2), "loads name the same block")
	assert.Equal(t, 11, *l1.Get())

	l1.Release()
	c.Release()
	assert.Zero(t, d.calls.Load(), "an outstanding load keeps the block alive")

	assert.Equal(t, 11, *l2.Get())
	l2.Release()
	assert.Equal(t, int64(1), d.calls.Load())
}

func TestCell_StoreReleasesDisplaced(t *testing.T) {
	d := &countingDisposer{}
	opts := &ref.Options{Disposer: d}

	a := ref.NewIn(1, opts)
	c := cell.New(&a)
	b := ref.NewIn(2, opts)
	c.Store(&b)
	assert.Equal(t, int64(1), d.calls.Load(), "displaced value is disposed")

	l := c.Load()
	assert.Equal(t, 2, *l.Get())
	l.Release()

	c.Release()
	assert.Equal(t, int64(2), d.calls.Load())
}

func TestCell_Swap(t *testing.T) {
	a := ref.New(10)
	c := cell.New(&a)

	b := ref.New(20)
	prev := c.Swap(&b)
	assert.Equal(t, 10, *prev.Get(), "swap returns the previous value")
	prev.Release()

	l := c.Load()
	assert.Equal(t, 20, *l.Get())
	l.Release()
	c.Release()
}

func TestCell_CompareAndSwap(t *testing.T) {
	a := ref.New(1)
	c := cell.New(&a)

	probe := c.Load()
	repl := ref.New(2)
	require.True(t, c.CompareAndSwap(probe, &repl))
	assert.Panics(t, func() { repl.Get() }, "new handle is consumed on success")
	probe.Release()

	l := c.Load()
	assert.Equal(t, 2, *l.Get())
	l.Release()

	other := ref.New(3)
	again := ref.New(4)
	assert.False(t, c.CompareAndSwap(other, &again), "different block does not match")
	assert.Equal(t, 4, *again.Get(), "new handle survives a failed swap")

	other.Release()
	again.Release()
	c.Release()
}

func TestCell_ReleaseEmpties(t *testing.T) {
	a := ref.New(1)
	c := cell.New(&a)
	c.Release()

	assert.NotPanics(t, func() { c.Release() })
	assert.PanicsWithValue(t, "cell: use of empty Cell", func() { c.Load() })

	var zero cell.Cell[int]
	assert.PanicsWithValue(t, "cell: use of empty Cell", func() { zero.Load() })
}

func TestCell_ConcurrentLoadStore(t *testing.T) {
	d := &countingDisposer{}
	opts := &ref.Options{Disposer: d}

	const (
		writers   = 4
		readers   = 4
		perWriter = 250
	)

	seed := ref.NewIn(0, opts)
	c := cell.New(&seed)

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWriter {
				n := ref.NewIn(w*perWriter+i, opts)
				c.Store(&n)
			}
		}()
	}
	for range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				l := c.Load()
				_ = *l.Get()
				l.Release()
			}
		}()
	}
	wg.Wait()
	c.Release()

	assert.Equal(t, int64(writers*perWriter+1), d.calls.Load(),
		"every stored block is disposed exactly once")
}
