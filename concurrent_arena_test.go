// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestConcurrentArenaLenCap(t *testing.T) {
	alloc, native := newTestAllocator(t)
	arena := NewConcurrentArena(NewMonotonicArena(WithAllocator(alloc), WithMinBufferSize(1024)))

	require.Equal(t, 0, arena.Len())
	require.Equal(t, 1024, arena.Cap())

	require.NotNil(t, arena.Alloc(100, 1))
	require.NotNil(t, arena.Alloc(200, 1))
	require.Equal(t, 300, arena.Len())
	require.Equal(t, 300, arena.Peak())

	arena.Reset()
	require.Equal(t, 0, arena.Len())
	require.Equal(t, 300, arena.Peak())
	require.Equal(t, 1, native.Live())

	arena.Release()
	require.Equal(t, 0, native.Live())
}

func TestConcurrentArenaConcurrentAccess(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	arena := NewConcurrentArena(NewMonotonicArena(WithAllocator(alloc), WithMinBufferSize(64*1024)))
	defer arena.Release()

	const numGoroutines = 10
	const allocationsPerGoroutine = 100

	var wg sync.WaitGroup
	ptrs := make([][]unsafe.Pointer, numGoroutines)
	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < allocationsPerGoroutine; i++ {
				ptr := arena.Alloc(16, 8)
				if ptr != nil {
					*(*uint64)(ptr) = uint64(g*allocationsPerGoroutine + i)
				}
				ptrs[g] = append(ptrs[g], ptr)
				_ = arena.Len()
				_ = arena.Peak()
			}
		}(g)
	}
	wg.Wait()

	require.Equal(t, numGoroutines*allocationsPerGoroutine*16, arena.Len())
	for g, list := range ptrs {
		for i, ptr := range list {
			require.NotNil(t, ptr)
			require.Equal(t, uint64(g*allocationsPerGoroutine+i), *(*uint64)(ptr))
		}
	}
}

func TestConcurrentArenaWrappingNil(t *testing.T) {
	arena := NewConcurrentArena(nil)

	require.Nil(t, arena.Alloc(100, 1))
	require.Equal(t, 0, arena.Len())
	require.Equal(t, 0, arena.Cap())
	require.Equal(t, 0, arena.Peak())
	require.NotPanics(t, arena.Reset)
	require.NotPanics(t, arena.Release)
}

func TestConcurrentArenaWrappingGoArena(t *testing.T) {
	arena := NewConcurrentArena(&goArena{})

	require.NotNil(t, arena.Alloc(100, 1))
	require.Equal(t, 100, arena.Len())
	arena.Reset()
	require.Equal(t, 0, arena.Len())
	require.Equal(t, 100, arena.Peak())
}

// goArena allocates from the Go heap.
type goArena struct {
	len, peak int
}

func (a *goArena) Alloc(size, _ uintptr) unsafe.Pointer {
	a.len += int(size)
	a.peak = max(a.peak, a.len)
	return unsafe.Pointer(unsafe.SliceData(make([]byte, max(size, 1))))
}

func (a *goArena) Reset()    { a.len = 0 }
func (a *goArena) Release()  { a.len = 0 }
func (a *goArena) Len() int  { return a.len }
func (a *goArena) Cap() int  { return int(^uint(0) >> 1) }
func (a *goArena) Peak() int { return a.peak }
