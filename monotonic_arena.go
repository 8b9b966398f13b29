// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"unsafe"
)

type monotonicArena struct {
	*arenaBuffers
	peak               uintptr // tracks peak allocated space
	minBufferSize      uintptr // minimum size for new buffers
	initialBufferCount int     // number of initial buffers to create
}

// arenaBuffers owns the native buffers of a monotonic arena. It is kept
// apart from the arena so that a cleanup attached to the arena can free them
// without keeping the arena reachable.
type arenaBuffers struct {
	alloc   *Allocator
	buffers []*monotonicBuffer
}

func (b *arenaBuffers) release() {
	for _, s := range b.buffers {
		s.release(b.alloc)
	}
}

// native returns the number of bytes held in native buffers.
func (b *arenaBuffers) native() uintptr {
	var total uintptr
	for _, s := range b.buffers {
		if s.ptr != nil {
			total += s.size
		}
	}
	return total
}

// monotonicBuffer is a native allocation of size usable bytes, obtained on
// first use.
type monotonicBuffer struct {
	ptr    unsafe.Pointer
	offset uintptr
	size   uintptr
	align  uintptr
}

func (a *monotonicArena) newBuffer(size, align uintptr) *monotonicBuffer {
	return &monotonicBuffer{
		size:  a.alloc.UsableSize(size, align),
		align: align,
	}
}

func (s *monotonicBuffer) allocate(alloc *Allocator, size, alignment uintptr) (unsafe.Pointer, bool) {
	if s.ptr == nil {
		if s.size == 0 {
			return nil, false
		}
		if s.ptr = alloc.Alloc(s.size, s.align); s.ptr == nil {
			return nil, false
		}
	}
	start := uintptr(s.ptr) + s.offset
	alignOffset := alignUp(start, alignment) - start
	allocSize := size + alignOffset

	if s.availableBytes() < allocSize {
		return nil, false
	}
	ptr := unsafe.Add(s.ptr, s.offset+alignOffset)
	s.offset += allocSize

	clear(unsafe.Slice((*byte)(ptr), size))
	return ptr, true
}

func (s *monotonicBuffer) release(alloc *Allocator) {
	alloc.Free(s.ptr, s.size, s.align)
	s.offset = 0
	s.ptr = nil
}

func (s *monotonicBuffer) availableBytes() uintptr {
	return s.size - s.offset
}

func alignUp(n, alignment uintptr) uintptr {
	return (n + alignment - 1) &^ (alignment - 1)
}

// NewMonotonicArena creates an arena whose buffers come from the native
// allocator. By default it starts with one 32KB buffer of the default
// allocator; see the options. Buffer sizes are rounded up to the native
// size class, so Cap may exceed the requested sizes.
func NewMonotonicArena(opts ...MonotonicArenaOption) Arena {
	return newMonotonicArena(opts...)
}

func newMonotonicArena(opts ...MonotonicArenaOption) *monotonicArena {
	a := &monotonicArena{
		arenaBuffers:       &arenaBuffers{},
		minBufferSize:      minBufferSize,
		initialBufferCount: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.alloc == nil {
		a.alloc = New(nil)
	}
	for i := 0; i < a.initialBufferCount; i++ {
		a.buffers = append(a.buffers, a.newBuffer(a.minBufferSize, MinAlign))
	}
	return a
}

const (
	minBufferSize = 1024 * 32 // 32KB
)

// MonotonicArenaOption represents a configuration option for a monotonic arena.
type MonotonicArenaOption func(*monotonicArena)

// WithMinBufferSize sets the minimum buffer size for new buffers created by the arena.
func WithMinBufferSize(size int) MonotonicArenaOption {
	return func(a *monotonicArena) {
		a.minBufferSize = uintptr(size)
	}
}

// WithInitialBufferCount sets the number of initial buffers to create.
func WithInitialBufferCount(count int) MonotonicArenaOption {
	return func(a *monotonicArena) {
		a.initialBufferCount = count
	}
}

// WithAllocator sets the allocator the arena takes its buffers from.
func WithAllocator(alloc *Allocator) MonotonicArenaOption {
	return func(a *monotonicArena) {
		a.alloc = alloc
	}
}

// Alloc satisfies the Arena interface.
func (a *monotonicArena) Alloc(size, alignment uintptr) unsafe.Pointer {
	if alignment == 0 {
		alignment = 1
	}
	for _, b := range a.buffers {
		if ptr, ok := b.allocate(a.alloc, size, alignment); ok {
			a.updatePeak()
			return ptr
		}
	}

	// No existing buffer has room. The new one is aligned for this request,
	// so it only needs to hold size bytes.
	b := a.newBuffer(max(size, a.minBufferSize), max(alignment, MinAlign))
	ptr, ok := b.allocate(a.alloc, size, alignment)
	if !ok {
		return nil
	}
	a.buffers = append(a.buffers, b)
	a.updatePeak()
	return ptr
}

func (a *monotonicArena) updatePeak() {
	if l := a.len(); l > a.peak {
		a.peak = l
	}
}

// Reset satisfies the Arena interface.
func (a *monotonicArena) Reset() {
	for _, s := range a.buffers {
		s.offset = 0
	}
}

// Release satisfies the Arena interface.
func (a *monotonicArena) Release() {
	a.release()
}

func (a *monotonicArena) len() uintptr {
	var total uintptr
	for _, s := range a.buffers {
		total += s.offset
	}
	return total
}

// Len satisfies the Arena interface.
func (a *monotonicArena) Len() int {
	return int(a.len())
}

// Cap satisfies the Arena interface.
func (a *monotonicArena) Cap() int {
	var total uintptr
	for _, s := range a.buffers {
		total += s.size
	}
	return int(total)
}

// Peak satisfies the Arena interface.
func (a *monotonicArena) Peak() int {
	return int(a.peak)
}
