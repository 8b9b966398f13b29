// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"unsafe"
)

// Arena is a region allocator: it hands out memory in bump-pointer fashion
// from a few large native buffers and frees them all at once.
//
// Memory obtained from an Arena is not scanned by the Go garbage collector.
// Values placed in it must not hold the only reference to Go-allocated
// memory.
type Arena interface {
	// Alloc allocates memory of the given size and returns a pointer to it.
	// The alignment parameter specifies the alignment of the allocated memory.
	// It returns nil when the native allocator is out of memory.
	Alloc(size, alignment uintptr) unsafe.Pointer

	// Reset makes the whole capacity available again without returning it
	// to the native allocator. Every pointer previously returned by Alloc
	// becomes invalid.
	Reset()

	// Release returns the arena's buffers to the native allocator. Every
	// pointer previously returned by Alloc becomes invalid. An arena may be
	// reused after Release; it allocates its buffers again on demand.
	Release()

	// Len returns the total number of bytes currently allocated in the arena.
	Len() int

	// Cap returns the total capacity (maximum bytes) that can be allocated in the arena.
	Cap() int

	// Peak returns the high-water mark of Len. It survives Reset, which makes
	// it the figure to size the next arena for the same workload by.
	Peak() int
}

// Allocate returns a pointer to a zeroed T allocated from a. A nil arena, or
// one that is out of memory, falls back to new(T).
func Allocate[T any](a Arena) *T {
	if a != nil {
		var x T
		if ptr := a.Alloc(unsafe.Sizeof(x), unsafe.Alignof(x)); ptr != nil {
			return (*T)(ptr)
		}
	}
	return new(T)
}

// AllocateSlice returns a zeroed slice of T with the given length and
// capacity allocated from a. A nil arena, or one that is out of memory,
// falls back to make.
func AllocateSlice[T any](a Arena, len, cap int) []T {
	if a != nil {
		var x T
		if ptr := (*T)(a.Alloc(unsafe.Sizeof(x)*uintptr(cap), unsafe.Alignof(x))); ptr != nil {
			return unsafe.Slice(ptr, cap)[:len]
		}
	}
	return make([]T, len, cap)
}

// SliceAppend appends data to s, taking any new backing array from a.
// The old backing array is not freed; it belongs to the arena.
func SliceAppend[T any](a Arena, s []T, data ...T) []T {
	if a == nil {
		return append(s, data...)
	}
	if newCap := nextCap(cap(s), len(s)+len(data)); newCap != cap(s) {
		grown := AllocateSlice[T](a, len(s), newCap)
		copy(grown, s)
		s = grown
	}
	return append(s, data...)
}

const growThreshold = 256

// nextCap returns the capacity a slice of capacity oldCap grows to in order
// to hold need elements: doubling while small, then by a quarter.
func nextCap(oldCap, need int) int {
	if need <= oldCap {
		return oldCap
	}
	if oldCap == 0 {
		return need
	}
	newCap := oldCap
	for need > newCap {
		if newCap < growThreshold {
			newCap *= 2
		} else {
			newCap += newCap / 4
		}
	}
	return newCap
}
