//go:build unix

package arena

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/refkit/internal/layout"
)

var mmapImpl Arena = mmapArena{}

// mmapArena maps anonymous pages outside the Go heap. Bases are page-aligned,
// which satisfies any alignment up to the page size.
type mmapArena struct{}

func (mmapArena) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	page := uintptr(os.Getpagesize())
	if align > page {
		return nil, fmt.Errorf("%w: %d exceeds page size %d", ErrAlignTooLarge, align, page)
	}
	n := layout.AlignUp(size, page)
	if n < size {
		return nil, fmt.Errorf("arena: mmap size %d overflows page rounding", size)
	}
	data, err := unix.Mmap(-1, 0, int(n),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap: %w", err)
	}
	return unsafe.Pointer(unsafe.SliceData(data)), nil
}

func (mmapArena) Free(p unsafe.Pointer, size, align uintptr) {
	page := uintptr(os.Getpagesize())
	data := unsafe.Slice((*byte)(p), layout.AlignUp(size, page))
	if err := unix.Munmap(data); err != nil && !errors.Is(err, unix.EINVAL) {
		// Double-unmap reports EINVAL and is treated as a no-op.
		panic(fmt.Sprintf("arena: munmap of %d bytes failed: %v", len(data), err))
	}
}

func (mmapArena) OffHeap() bool { return true }
