// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"sync"
	"unsafe"
)

type concurrentArena struct {
	mtx sync.Mutex
	a   Arena
}

// NewConcurrentArena returns an arena that serialises every call to a, so
// that it can be shared between goroutines. Wrapping nil yields an arena
// that allocates nothing.
func NewConcurrentArena(a Arena) Arena {
	return &concurrentArena{a: a}
}

// with runs f on the wrapped arena under the lock.
func (a *concurrentArena) with(f func(Arena)) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.a != nil {
		f(a.a)
	}
}

// Alloc satisfies the Arena interface.
func (a *concurrentArena) Alloc(size, alignment uintptr) unsafe.Pointer {
	var ptr unsafe.Pointer
	a.with(func(a Arena) { ptr = a.Alloc(size, alignment) })
	return ptr
}

// Reset satisfies the Arena interface.
func (a *concurrentArena) Reset() {
	a.with(Arena.Reset)
}

// Release satisfies the Arena interface.
func (a *concurrentArena) Release() {
	a.with(Arena.Release)
}

// Len satisfies the Arena interface.
func (a *concurrentArena) Len() int {
	var n int
	a.with(func(a Arena) { n = a.Len() })
	return n
}

// Cap satisfies the Arena interface.
func (a *concurrentArena) Cap() int {
	var n int
	a.with(func(a Arena) { n = a.Cap() })
	return n
}

// Peak satisfies the Arena interface.
func (a *concurrentArena) Peak() int {
	var n int
	a.with(func(a Arena) { n = a.Peak() })
	return n
}
