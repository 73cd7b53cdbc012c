package ref

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/refkit/internal/arena"
	"github.com/joshuapare/refkit/internal/layout"
)

// Block is a raw allocation handed to a Disposer on the final release.
// Ownership transfers with it: the disposer decides when (and whether) the
// memory returns to its arena. Not freeing is a leak, not a fault.
type Block struct {
	base  unsafe.Pointer
	size  uintptr
	align uintptr
	arena uint16
}

func blockOf(b unsafe.Pointer) Block {
	return Block{
		base:  b,
		size:  layout.Size(b),
		align: layout.BlockAlign(b),
		arena: layout.Arena(b),
	}
}

// Size returns the total block size in bytes, header included.
func (b Block) Size() uintptr { return b.size }

// Arena identifies the arena the block came from.
func (b Block) Arena() ArenaKind { return ArenaKind(b.arena) }

// Bytes exposes the raw block, header included, for inspection before Free.
func (b Block) Bytes() []byte {
	if b.base == nil {
		return nil
	}
	return unsafe.Slice((*byte)(b.base), b.size)
}

// Free poisons the count word and returns the block to its arena. Freeing
// twice is a no-op.
func (b *Block) Free() {
	if b == nil || b.base == nil {
		return
	}
	base := b.base
	b.base = nil
	layout.StoreCount(base, layout.Poison)
	a, ok := arena.Get(b.arena)
	if !ok {
		panic(fmt.Sprintf("ref: block from unknown arena id %d", b.arena))
	}
	a.Free(base, b.size, b.align)
}

// Disposer receives ownership of raw blocks on their final release. A block
// records its disposer at allocation time (see Options); the hook runs
// exactly once per block, after the count has reached zero.
//
// Disposer values are interned by identity, so implementations must be valid
// map keys. Pointer receivers are; closures must be wrapped (see
// dispose.Func). Registrations last for the life of the process: register a
// handful of strategies, not one per allocation.
type Disposer interface {
	Dispose(b Block)
}

// freeDisposer is registry id 0: return the block to its arena immediately.
type freeDisposer struct{}

func (freeDisposer) Dispose(b Block) { b.Free() }

var (
	dispMu  sync.Mutex
	dispTab atomic.Pointer[[]Disposer]
	dispIDs = map[Disposer]uint32{}
)

func init() {
	tab := []Disposer{freeDisposer{}}
	dispTab.Store(&tab)
}

func disposerAt(id uint32) Disposer {
	tab := *dispTab.Load()
	if int(id) >= len(tab) {
		panic(fmt.Sprintf("ref: unknown disposer id %d", id))
	}
	return tab[id]
}

// internDisposer resolves d to its registry id, registering it on first
// sight. The table is append-only: lookups on the release path are a single
// atomic load.
func internDisposer(d Disposer) uint32 {
	if d == nil {
		return 0
	}
	dispMu.Lock()
	defer dispMu.Unlock()
	if id, ok := dispIDs[d]; ok {
		return id
	}
	old := *dispTab.Load()
	tab := make([]Disposer, len(old)+1)
	copy(tab, old)
	id := uint32(len(old))
	tab[id] = d
	dispIDs[d] = id
	dispTab.Store(&tab)
	return id
}
