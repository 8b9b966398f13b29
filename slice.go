// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"math/bits"
	"unsafe"
)

// MakeSlice returns a zeroed slice of T with the given length and at least
// the given capacity, backed by native memory from a. The capacity is
// extended to fill the native size class. Release the slice with
// FreeSlice.
//
// T must not contain Go pointers that are the only reference to their
// target: native memory is invisible to the garbage collector. MakeSlice
// panics if len > cap or the allocation fails.
func MakeSlice[T any](a *Allocator, len, cap int) []T {
	if len < 0 || len > cap {
		panic("jemalloc: MakeSlice: len out of range")
	}
	elem, align := elemLayout[T]()
	if cap == 0 || elem == 0 {
		return make([]T, len, cap)
	}
	size := byteSize(elem, cap)
	ptr := a.AllocZeroed(size, align)
	if ptr == nil {
		panic("jemalloc: MakeSlice: out of memory")
	}
	return unsafe.Slice((*T)(ptr), a.UsableSize(size, align)/elem)[:len]
}

// GrowSlice returns s with room for at least n more elements. The backing
// array is first extended in place; when that fails it is reallocated and
// s must no longer be used. s must be empty or come from MakeSlice or
// GrowSlice with the same allocator.
func GrowSlice[T any](a *Allocator, s []T, n int) []T {
	if n < 0 {
		panic("jemalloc: GrowSlice: negative count")
	}
	need := len(s) + n
	if need <= cap(s) {
		return s
	}
	elem, align := elemLayout[T]()
	if cap(s) == 0 || elem == 0 {
		return MakeSlice[T](a, len(s), nextCap(cap(s), need))
	}

	ptr := unsafe.Pointer(unsafe.SliceData(s))
	oldSize := byteSize(elem, cap(s))
	size := byteSize(elem, nextCap(cap(s), need))
	if usable := a.ReallocInPlace(ptr, oldSize, size, align); usable >= size {
		return unsafe.Slice((*T)(ptr), usable/elem)[:len(s)]
	}
	moved := a.Realloc(ptr, oldSize, size, align)
	if moved == nil {
		panic("jemalloc: GrowSlice: out of memory")
	}
	return unsafe.Slice((*T)(moved), a.UsableSize(size, align)/elem)[:len(s)]
}

// Append appends data to s, growing it with GrowSlice.
func Append[T any](a *Allocator, s []T, data ...T) []T {
	return append(GrowSlice(a, s, len(data)), data...)
}

// FreeSlice returns the backing array of s to the native allocator.
// Freeing an empty slice is a no-op.
func FreeSlice[T any](a *Allocator, s []T) {
	elem, align := elemLayout[T]()
	if cap(s) == 0 || elem == 0 {
		return
	}
	a.Free(unsafe.Pointer(unsafe.SliceData(s)), byteSize(elem, cap(s)), align)
}

func elemLayout[T any]() (size, align uintptr) {
	var x T
	return unsafe.Sizeof(x), unsafe.Alignof(x)
}

func byteSize(elem uintptr, n int) uintptr {
	hi, size := bits.Mul64(uint64(elem), uint64(n))
	if hi != 0 || size > uint64(^uintptr(0)>>1) {
		panic("jemalloc: slice size out of range")
	}
	return uintptr(size)
}
