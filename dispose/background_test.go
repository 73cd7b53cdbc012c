package dispose_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/refkit/dispose"
	"github.com/joshuapare/refkit/ref"
)

func TestBackground_DisposesOffThread(t *testing.T) {
	d := &countingDisposer{}
	bg := dispose.NewBackground(d)
	defer bg.Close()

	s := ref.NewIn(1, &ref.Options{Disposer: bg})
	s.Release()
	bg.Drain()

	assert.Equal(t, int64(1), d.calls.Load())
}

func TestBackground_PreservesEveryBlock(t *testing.T) {
	d := &countingDisposer{}
	bg := dispose.NewBackground(d)

	const n = 100
	opts := &ref.Options{Disposer: bg}
	for i := range n {
		s := ref.NewIn(i, opts)
		s.Release()
	}
	bg.Drain()
	assert.Equal(t, int64(n), d.calls.Load(), "every release reaches the worker")
	assert.Zero(t, bg.Pending())

	require.NoError(t, bg.Close())
}

func TestBackground_CloseDrainsQueue(t *testing.T) {
	d := &countingDisposer{}
	bg := dispose.NewBackground(d)

	opts := &ref.Options{Disposer: bg}
	for i := range 50 {
		s := ref.NewIn(i, opts)
		s.Release()
	}

	require.NoError(t, bg.Close())
	assert.Equal(t, int64(50), d.calls.Load(), "close waits for queued work")

	assert.ErrorIs(t, bg.Close(), dispose.ErrClosed)
}

func TestBackground_DisposeAfterCloseRunsInline(t *testing.T) {
	d := &countingDisposer{}
	bg := dispose.NewBackground(d)
	require.NoError(t, bg.Close())

	s := ref.NewIn(9, &ref.Options{Disposer: bg})
	s.Release()
	assert.Equal(t, int64(1), d.calls.Load(), "no worker left, disposal happens on the caller")
}

func TestBackground_NilNextFrees(t *testing.T) {
	bg := dispose.NewBackground(nil)

	s := ref.NewIn(2, &ref.Options{Disposer: bg})
	stale := s
	s.Release()
	bg.Drain()

	assert.Panics(t, func() { stale.Clone() }, "default next strategy frees")
	require.NoError(t, bg.Close())
}
