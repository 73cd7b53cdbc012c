package ref

import "github.com/joshuapare/refkit/internal/arena"

// ArenaKind selects the storage backend for a block.
type ArenaKind uint16

const (
	// ArenaHeap allocates from the Go allocator. Freed blocks are poisoned
	// and reclaimed by the collector once the last handle copy dies.
	ArenaHeap ArenaKind = ArenaKind(arena.Heap)

	// ArenaMmap maps pages outside the Go heap and unmaps them on free.
	// On non-unix platforms it falls back to heap behavior.
	ArenaMmap ArenaKind = ArenaKind(arena.Mmap)
)

// Options configure where a block lives and how it is disposed. The zero
// value and a nil *Options both mean the heap arena with immediate free.
type Options struct {
	Arena    ArenaKind
	Disposer Disposer
}

func (o *Options) resolve() (aid uint16, did uint32) {
	if o == nil {
		return arena.Heap, 0
	}
	return uint16(o.Arena), internDisposer(o.Disposer)
}
