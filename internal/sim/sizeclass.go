// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"math"
	"math/bits"
)

const (
	lgQuantum = 4
	quantum   = 1 << lgQuantum
	tinyMin   = 8
	pageSize  = 4096

	// smallMaxClass is the largest size served from a bin.
	smallMaxClass = 14336

	// maxAlloc bounds the size classes Nallocx reports; larger requests
	// fail like an exhausted address space would.
	maxAlloc = min(1<<40, math.MaxInt>>1)

	// maxBacking bounds the Go memory behind a single block. Requests that
	// would need more fail with NULL instead of exhausting the Go heap.
	maxBacking = min(4<<30, maxAlloc)
)

func alignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// sizeClass rounds size up to its jemalloc size class: one tiny class, then
// quantum spacing up to 4 quanta, then four classes per doubling.
func sizeClass(size uintptr) uintptr {
	switch {
	case size <= tinyMin:
		return tinyMin
	case size <= 4*quantum:
		return alignUp(size, quantum)
	}
	lg := uintptr(bits.Len64(uint64(size-1))) - 1
	return alignUp(size, 1<<(lg-2))
}

// usableSize is the usable size of a request for size bytes aligned to
// align, or 0 when the request cannot be satisfied.
func usableSize(size, align uintptr) uintptr {
	if size > maxAlloc || align > maxAlloc {
		return 0
	}
	if size == 0 {
		size = 1
	}
	usize := sizeClass(alignUp(size, align))
	for usize%align != 0 {
		usize = sizeClass(usize + 1)
	}
	return usize
}

// binSizes lists the small size classes.
func binSizes() []uintptr {
	var sizes []uintptr
	for size := uintptr(tinyMin); size <= smallMaxClass; size = sizeClass(size + 1) {
		sizes = append(sizes, size)
	}
	return sizes
}

// flagsAlign decodes the alignment carried in the low six bits of flags.
func flagsAlign(flags int32) uintptr {
	lg := flags & 0x3f
	if lg == 0 {
		return quantum
	}
	return uintptr(1) << lg
}

func flagsZero(flags int32) bool {
	return flags&0x40 != 0
}
