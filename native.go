// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"unsafe"
)

// Native is the allocator's C interface. Every method maps one-to-one to a
// jemalloc entry point and has its semantics.
//
// Names passed to the mallctl methods must end in a NUL byte: the bytes are
// handed to the native parser as they are. MIBs are passed as slices whose
// length is the MIB length.
type Native interface {
	// Mallocx allocates at least size bytes as directed by flags.
	Mallocx(size uintptr, flags int32) unsafe.Pointer
	// Calloc allocates zeroed memory for n objects of size bytes each with
	// the default alignment.
	Calloc(n, size uintptr) unsafe.Pointer
	// Rallocx resizes ptr to at least size bytes, possibly moving it.
	Rallocx(ptr unsafe.Pointer, size uintptr, flags int32) unsafe.Pointer
	// Xallocx resizes ptr in place to at least size bytes and at most
	// size+extra bytes, and returns the resulting usable size.
	Xallocx(ptr unsafe.Pointer, size, extra uintptr, flags int32) uintptr
	// Sdallocx releases ptr, whose size is known to be size.
	Sdallocx(ptr unsafe.Pointer, size uintptr, flags int32)
	// Nallocx returns the usable size an equivalent Mallocx call would
	// return, without allocating.
	Nallocx(size uintptr, flags int32) uintptr
	// UsableSize returns the usable size of the allocation at ptr.
	UsableSize(ptr unsafe.Pointer) uintptr

	// Mallctl reads and/or writes the control value called name.
	Mallctl(name string, oldp unsafe.Pointer, oldlenp *uintptr, newp unsafe.Pointer, newlen uintptr) int32
	// MallctlNameToMIB translates name into mib. On input *miblenp is
	// len(mib); on output it is the number of components written.
	MallctlNameToMIB(name string, mib []uintptr, miblenp *uintptr) int32
	// MallctlByMIB is Mallctl addressed by a MIB.
	MallctlByMIB(mib []uintptr, oldp unsafe.Pointer, oldlenp *uintptr, newp unsafe.Pointer, newlen uintptr) int32

	// StatsPrint returns the human-readable statistics report produced by
	// malloc_stats_print with the given option characters.
	StatsPrint(opts string) string
}

var defaultNative = newDefaultNative()

// Default returns the process-wide native allocator: jemalloc when the
// package is built with the jemalloc tag and cgo, the simulated allocator
// otherwise. See Linked.
func Default() Native {
	return defaultNative
}
