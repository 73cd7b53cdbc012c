// Package arena provides the block storage backends for reference-counted
// allocations.
//
// # Arenas
//
// Two arenas are registered:
//
//   - Heap: alignment-padded allocations from the Go allocator. Freed blocks
//     are reclaimed by the collector once the last interior pointer dies, so
//     a stale handle dereferences poisoned but mapped memory.
//   - Mmap: anonymous page-multiple mappings outside the Go heap. Freeing
//     unmaps the pages, so a stale handle faults.
//
// Allocations are zeroed and aligned to the requested power-of-two alignment.
// Arena ids are stored in block headers, which is why the registry is a fixed
// table rather than an open set.
package arena

import "unsafe"

// Arena allocates and frees raw blocks.
type Arena interface {
	// Alloc returns size bytes of zeroed memory aligned to align.
	// align must be a power of two.
	Alloc(size, align uintptr) (unsafe.Pointer, error)

	// Free returns a block obtained from Alloc with the same size and align.
	Free(p unsafe.Pointer, size, align uintptr)

	// OffHeap reports whether blocks live outside the Go heap.
	OffHeap() bool
}

// Registry ids. These values are persisted in block headers.
const (
	Heap uint16 = 0
	Mmap uint16 = 1
)

var registry = [...]Arena{
	Heap: heapArena{},
	Mmap: mmapImpl,
}

// Get returns the arena registered under id.
func Get(id uint16) (Arena, bool) {
	if int(id) >= len(registry) {
		return nil, false
	}
	return registry[id], true
}
