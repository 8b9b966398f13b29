// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestMonotonicArenaLen(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	arena := NewMonotonicArena(WithAllocator(alloc))
	defer arena.Release()
	require.Equal(t, 0, arena.Len())

	// Allocate some memory
	require.NotNil(t, arena.Alloc(100, 1))
	require.Equal(t, 100, arena.Len())

	require.NotNil(t, arena.Alloc(200, 1))
	require.Equal(t, 300, arena.Len())

	// Alignment may add padding
	ptr := arena.Alloc(50, 8)
	require.NotNil(t, ptr)
	require.Zero(t, uintptr(ptr)%8)
	require.GreaterOrEqual(t, arena.Len(), 350)
}

func TestMonotonicArenaCap(t *testing.T) {
	alloc, _ := newTestAllocator(t)

	arena := NewMonotonicArena(WithAllocator(alloc), WithInitialBufferCount(1), WithMinBufferSize(1024))
	require.Equal(t, 1024, arena.Cap())

	arena = NewMonotonicArena(WithAllocator(alloc), WithInitialBufferCount(3), WithMinBufferSize(512))
	require.Equal(t, 1536, arena.Cap()) // 512 * 3

	// Buffer sizes are rounded up to the native size class.
	arena = NewMonotonicArena(WithAllocator(alloc), WithInitialBufferCount(2), WithMinBufferSize(1000))
	require.Equal(t, 2*int(alloc.UsableSize(1000, MinAlign)), arena.Cap())
	require.Equal(t, 2048, arena.Cap())
}

func TestMonotonicArenaLazyBuffers(t *testing.T) {
	alloc, native := newTestAllocator(t)
	arena := NewMonotonicArena(WithAllocator(alloc), WithInitialBufferCount(2), WithMinBufferSize(1024))

	// Buffers are allocated on first use.
	require.Equal(t, 0, native.Live())
	require.NotNil(t, arena.Alloc(10, 1))
	require.Equal(t, 1, native.Live())

	arena.Release()
	require.Equal(t, 0, native.Live())
	require.Equal(t, 2048, arena.Cap())

	// A released arena can be used again.
	require.NotNil(t, arena.Alloc(10, 1))
	require.Equal(t, 1, native.Live())
	arena.Release()
}

func TestMonotonicArenaLenCapAfterReset(t *testing.T) {
	alloc, native := newTestAllocator(t)
	arena := NewMonotonicArena(WithAllocator(alloc), WithInitialBufferCount(1), WithMinBufferSize(1024))

	require.NotNil(t, arena.Alloc(100, 1))
	require.Equal(t, 100, arena.Len())
	require.Equal(t, 1024, arena.Cap())

	// Reset keeps the native buffer
	arena.Reset()
	require.Equal(t, 0, arena.Len())
	require.Equal(t, 1024, arena.Cap())
	require.Equal(t, 1, native.Live())

	require.NotNil(t, arena.Alloc(50, 1))
	require.Equal(t, 50, arena.Len())

	arena.Release()
	require.Equal(t, 0, arena.Len())
	require.Equal(t, 0, native.Live())
}

func TestMonotonicArenaMultipleBuffers(t *testing.T) {
	alloc, native := newTestAllocator(t)
	arena := NewMonotonicArena(WithAllocator(alloc), WithMinBufferSize(1024))
	defer arena.Release()

	require.NotNil(t, arena.Alloc(800, 1))
	require.Equal(t, 1024, arena.Cap())

	// Does not fit in the first buffer
	require.NotNil(t, arena.Alloc(800, 1))
	require.Equal(t, 2048, arena.Cap())
	require.Equal(t, 1600, arena.Len())
	require.Equal(t, 2, native.Live())

	// Larger than the minimum buffer size
	require.NotNil(t, arena.Alloc(5000, 1))
	require.Equal(t, 2048+int(alloc.UsableSize(5000, MinAlign)), arena.Cap())
	require.Equal(t, 6600, arena.Len())
}

func TestMonotonicArenaAlignment(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	arena := NewMonotonicArena(WithAllocator(alloc), WithMinBufferSize(1024))
	defer arena.Release()

	for _, align := range []uintptr{1, 2, 4, 8, 16, 32, 64, 128} {
		require.NotNil(t, arena.Alloc(1, 1))
		ptr := arena.Alloc(8, align)
		require.NotNil(t, ptr)
		require.Zero(t, uintptr(ptr)%align, "alignment %d", align)
	}

	// An alignment beyond the buffer's gets a buffer of its own.
	ptr := arena.Alloc(100, 4096)
	require.NotNil(t, ptr)
	require.Zero(t, uintptr(ptr)%4096)
}

func TestMonotonicArenaZeroesMemory(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	arena := NewMonotonicArena(WithAllocator(alloc), WithMinBufferSize(1024))
	defer arena.Release()

	ptr := arena.Alloc(64, 1)
	b := unsafe.Slice((*byte)(ptr), 64)
	for i := range b {
		b[i] = 0xff
	}

	arena.Reset()
	ptr = arena.Alloc(64, 1)
	for _, c := range unsafe.Slice((*byte)(ptr), 64) {
		require.Zero(t, c)
	}
}

func TestMonotonicArenaWithTypes(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	arena := NewMonotonicArena(WithAllocator(alloc))
	defer arena.Release()

	type point struct {
		X, Y int64
	}
	p := Allocate[point](arena)
	require.Equal(t, point{}, *p)
	p.X, p.Y = 3, 4
	require.Equal(t, int64(7), p.X+p.Y)

	ints := AllocateSlice[int32](arena, 5, 10)
	require.Len(t, ints, 5)
	require.Equal(t, 10, cap(ints))
	require.Zero(t, uintptr(unsafe.Pointer(&ints[0]))%unsafe.Alignof(int32(0)))

	// A nil arena falls back to the Go heap.
	require.NotNil(t, Allocate[point](nil))
	require.Len(t, AllocateSlice[int](nil, 2, 4), 2)
}

func TestMonotonicArenaPeak(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	arena := NewMonotonicArena(WithAllocator(alloc), WithMinBufferSize(1024))
	defer arena.Release()
	require.Equal(t, 0, arena.Peak())

	arena.Alloc(300, 1)
	arena.Alloc(200, 1)
	require.Equal(t, 500, arena.Peak())

	// Peak survives Reset
	arena.Reset()
	require.Equal(t, 500, arena.Peak())
	arena.Alloc(100, 1)
	require.Equal(t, 500, arena.Peak())

	arena.Alloc(600, 1)
	require.Equal(t, 700, arena.Peak())
}

func TestMonotonicArenaOutOfMemory(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	arena := NewMonotonicArena(WithAllocator(alloc), WithMinBufferSize(1024))
	defer arena.Release()

	arena.Alloc(100, 1)
	require.Nil(t, arena.Alloc(^uintptr(0)>>2, 1))
	require.Equal(t, 100, arena.Len())
	require.Equal(t, 100, arena.Peak())
	require.Equal(t, 1024, arena.Cap())

	// The Go heap takes over for typed allocations.
	type big [1 << 20]byte
	require.NotNil(t, Allocate[big](NewConcurrentArena(nil)))
}

func TestMonotonicArenaZeroSize(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	arena := NewMonotonicArena(WithAllocator(alloc), WithMinBufferSize(1024))
	defer arena.Release()

	require.NotNil(t, arena.Alloc(0, 1))
	require.NotNil(t, arena.Alloc(0, 0))
	require.Equal(t, 0, arena.Len())
}

func BenchmarkMonotonicArenaAlloc(b *testing.B) {
	alloc, _ := newTestAllocator(b)
	arena := NewMonotonicArena(WithAllocator(alloc), WithMinBufferSize(1<<20))
	defer arena.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if arena.Alloc(64, 8) == nil {
			arena.Reset()
		}
		if arena.Len() > 1<<19 {
			arena.Reset()
		}
	}
}
