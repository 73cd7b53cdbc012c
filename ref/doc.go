// Package ref provides reference-counted shared ownership of values stored
// in manually managed memory blocks.
//
// # Overview
//
// Every allocation is a single contiguous block: a fixed header holding an
// atomic reference count and block metadata, followed by payload storage.
// Handles are one machine word. Cloning a handle increments the count;
// releasing one decrements it, and the final release hands the raw block to
// its disposer. Blocks are never traced by the garbage collector, which is
// why payload types must be pointer-free (no pointers, maps, chans, slices,
// strings, interfaces or funcs anywhere in the value). Constructors panic on
// pointerful payload types.
//
// # Handle Types
//
//   - Shared: atomically counted shared handle, the workhorse
//   - Unique: statically unique handle (count is exactly 1), free mutation,
//     zero-cost downgrade to Shared via Shareable
//   - Offset: payload-pointer representation of a shared handle, direct deref
//   - Borrow: non-owning view, re-materializable into an owning handle
//   - Slice: shared handle to trailing element storage, length fixed at
//     allocation
//   - Str: shared immutable byte storage built from a string
//   - Union: two shared handle types packed into one tagged word
//   - CloneIter: batched clone iterator from CloneMany
//
// # Constructing and Sharing
//
//	s := ref.New(42)
//	t := s.Clone()     // count 2
//	fmt.Println(*t.Get())
//	t.Release()        // count 1
//	s.Release()        // count 0: block handed to its disposer
//
// Release nils the handle it is called on, and releasing an already released
// handle is a no-op. Copies of the handle value are independent words: each
// copy that was counted must be released exactly once.
//
// # Allocation Options
//
// Constructors ending in In accept *Options; nil means the heap arena and
// immediate free on final release:
//
//	s := ref.NewIn(header, &ref.Options{Arena: ref.ArenaMmap})
//
// The heap arena allocates from the Go allocator and poisons freed blocks, so
// a stale handle fails loudly on its next count operation. The mmap arena
// maps pages outside the Go heap and unmaps them on free.
//
// # Disposal
//
// The final release invokes the block's Disposer exactly once, after the
// count has dropped to zero, handing it ownership of the raw allocation.
// The default disposer returns the block to its arena immediately. The
// dispose package provides alternatives (leaking, background freeing,
// logged disposal).
//
// # Concurrency
//
// Distinct handles to one block may be used freely from many goroutines; the
// count protocol is atomic. A single handle value is not safe for concurrent
// use. Go's atomics are sequentially consistent, which is stronger than the
// increment/decrement ordering the protocol needs, so no additional fences
// appear in this package.
//
// # Failure Modes
//
// This package does not return errors. Allocation failure and reference
// count overflow abort the process. Caller bugs (use of a released handle,
// a pointerful payload type, a trusted-length mismatch) panic with the
// observed state in the message. The one recoverable probe, TryUnique,
// reports false and leaves its handle untouched.
//
// # Related Packages
//
//   - github.com/joshuapare/refkit/ref/cell: atomic container for shared handles
//   - github.com/joshuapare/refkit/dispose: disposal strategies
package ref
