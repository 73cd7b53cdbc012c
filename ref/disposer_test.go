package ref_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/refkit/ref"
)

// holdDisposer keeps the block instead of freeing it.
type holdDisposer struct {
	held []ref.Block
}

func (d *holdDisposer) Dispose(b ref.Block) { d.held = append(d.held, b) }

func TestDisposer_ReceivesOwnership(t *testing.T) {
	d := &holdDisposer{}
	s := ref.NewIn(uint32(0xC0FFEE), &ref.Options{Disposer: d})
	s.Release()

	require.Len(t, d.held, 1, "the final release hands over the block")
	blk := d.held[0]
	assert.Greater(t, blk.Size(), uintptr(0))
	assert.Equal(t, ref.ArenaHeap, blk.Arena())
	assert.Len(t, blk.Bytes(), int(blk.Size()), "the raw block is inspectable before Free")

	// Ownership means freeing is the disposer's call.
	blk.Free()
	assert.NotPanics(t, func() { blk.Free() }, "freeing twice is a no-op")
}

func TestDisposer_RunsExactlyOnce(t *testing.T) {
	d := &countingDisposer{}
	s := ref.NewIn(1, &ref.Options{Disposer: d})

	clones := make([]ref.Shared[int], 8)
	for i := range clones {
		clones[i] = s.Clone()
	}
	s.Release()
	for i := range clones {
		clones[i].Release()
	}
	assert.Equal(t, 1, d.calls)
}

func TestDisposer_SharedAcrossBlocks(t *testing.T) {
	d := &countingDisposer{}
	a := ref.NewIn(1, &ref.Options{Disposer: d})
	b := ref.NewIn(2, &ref.Options{Disposer: d})

	a.Release()
	b.Release()
	assert.Equal(t, 2, d.calls, "one strategy value serves many blocks")
}

func TestDisposer_InheritedByMakeMut(t *testing.T) {
	d := &countingDisposer{}
	s := ref.NewIn(1, &ref.Options{Disposer: d})
	c := s.Clone()

	s.MakeMut()
	s.Release()
	c.Release()
	assert.Equal(t, 2, d.calls, "the copied block inherits the disposer")
}

func TestDisposer_DefaultFreesImmediately(t *testing.T) {
	s := ref.New(5)
	copyOfS := s
	s.Release()

	// The default disposer poisoned the block on the way out.
	assert.Panics(t, func() { copyOfS.Clone() })
}
