// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"unsafe"
)

// Allocator allocates memory from a Native allocator, translating
// (size, alignment) requests into native flags. It is safe for concurrent
// use as long as the Native is, which jemalloc is.
//
// Memory returned by an Allocator is not scanned by the Go garbage
// collector. It must not hold the only reference to Go-allocated objects.
type Allocator struct {
	native Native
}

// New returns an Allocator backed by native. A nil native selects Default().
func New(native Native) *Allocator {
	if native == nil {
		native = Default()
	}
	return &Allocator{native: native}
}

// Native returns the underlying native allocator.
func (a *Allocator) Native() Native {
	return a.native
}

// Alloc allocates size bytes aligned to alignment, which must be a power of
// two. It returns nil if the native allocator is out of memory.
func (a *Allocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	return a.native.Mallocx(size, AlignToFlags(alignment))
}

// AllocZeroed is Alloc with the memory zero-filled. Requests the default
// alignment already satisfies go through calloc, the rest through mallocx
// with ZeroFlag.
func (a *Allocator) AllocZeroed(size, alignment uintptr) unsafe.Pointer {
	if alignment <= MinAlign && alignment <= size {
		return a.native.Calloc(1, size)
	}
	return a.native.Mallocx(size, Flags(alignment, true))
}

// Realloc resizes the allocation at ptr, of oldSize bytes, to size bytes,
// keeping its alignment. The memory may move; the returned pointer replaces
// ptr. On failure nil is returned and ptr is left untouched.
func (a *Allocator) Realloc(ptr unsafe.Pointer, oldSize, size, alignment uintptr) unsafe.Pointer {
	return a.native.Rallocx(ptr, size, AlignToFlags(alignment))
}

// ReallocInPlace tries to resize the allocation at ptr to size bytes without
// moving it, and returns the resulting usable size. A result smaller than
// size means the allocation could not grow.
func (a *Allocator) ReallocInPlace(ptr unsafe.Pointer, oldSize, size, alignment uintptr) uintptr {
	return a.native.Xallocx(ptr, size, 0, AlignToFlags(alignment))
}

// Free releases the allocation at ptr. size and alignment must be those the
// memory was allocated (or last resized) with; size may be anything between
// the requested size and UsableSize. Freeing nil is a no-op.
func (a *Allocator) Free(ptr unsafe.Pointer, size, alignment uintptr) {
	if ptr == nil {
		return
	}
	a.native.Sdallocx(ptr, size, AlignToFlags(alignment))
}

// UsableSize returns the usable size Alloc(size, alignment) would provide.
func (a *Allocator) UsableSize(size, alignment uintptr) uintptr {
	return a.native.Nallocx(size, AlignToFlags(alignment))
}
