package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	a, ok := Get(Heap)
	require.True(t, ok)
	assert.False(t, a.OffHeap())

	_, ok = Get(Mmap)
	require.True(t, ok)

	_, ok = Get(999)
	assert.False(t, ok, "unknown ids must not resolve")
}

func TestHeapArena_Alignment(t *testing.T) {
	a, _ := Get(Heap)
	for _, align := range []uintptr{1, 2, 8, 16, 64, 256} {
		p, err := a.Alloc(128, align)
		require.NoError(t, err, "align %d", align)
		assert.Zero(t, uintptr(p)%align, "base must be %d-aligned", align)
	}
}

func TestHeapArena_Zeroed(t *testing.T) {
	a, _ := Get(Heap)
	p, err := a.Alloc(64, 8)
	require.NoError(t, err)

	b := unsafe.Slice((*byte)(p), 64)
	for i, v := range b {
		require.Zero(t, v, "byte %d must be zero", i)
	}

	// Writes must stick; Free is a no-op for the heap arena.
	b[0] = 0xAA
	a.Free(p, 64, 8)
	assert.Equal(t, byte(0xAA), b[0])
}
