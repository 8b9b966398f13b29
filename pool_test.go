// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPoolAcquireRelease(t *testing.T) {
	alloc, native := newTestAllocator(t)
	pool := NewArenaPool(alloc)

	item := pool.Acquire(1)
	require.Equal(t, uint64(1), item.Key)
	require.Equal(t, defaultPoolArenaSize, item.Arena.Cap())

	require.NotNil(t, item.Arena.Alloc(4096, 8))
	require.Equal(t, 1, native.Live())

	pool.Release(item)
	require.Equal(t, uint64(0), item.Key)
	require.Equal(t, 0, item.Arena.Len())

	// The released item is handed out again while it is alive.
	again := pool.Acquire(2)
	require.Same(t, item, again)
	require.Equal(t, uint64(2), again.Key)

	again.Arena.Release()
	runtime.KeepAlive(item)
}

func TestPoolSizesFromPeak(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	pool := NewArenaPool(alloc)

	var items []*PoolItem
	for i := 0; i < 3; i++ {
		item := pool.Acquire(7)
		item.Arena.Alloc(8192, 8)
		items = append(items, item)
	}
	pool.ReleaseMany(items)
	require.Equal(t, 8192, pool.getArenaSize(7))
	require.Equal(t, defaultPoolArenaSize, pool.getArenaSize(8))

	for _, item := range items {
		item.Arena.Release()
	}
}

func TestPoolSizeWindow(t *testing.T) {
	pool := NewArenaPool(nil)

	for i := 0; i < sizeWindow; i++ {
		pool.Release(&PoolItem{Arena: &goArena{peak: 100}, Key: 3})
	}
	size := pool.sizes[3]
	require.Equal(t, sizeWindow, size.count)
	require.Equal(t, 100*sizeWindow, size.totalBytes)

	// The window folds into a single average before the next sample.
	pool.Release(&PoolItem{Arena: &goArena{peak: 400}, Key: 3})
	require.Equal(t, 2, size.count)
	require.Equal(t, 500, size.totalBytes)
	require.Equal(t, 250, pool.getArenaSize(3))
}

func TestPoolReleasesCollectedArenas(t *testing.T) {
	alloc, native := newTestAllocator(t)

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	pool := NewArenaPool(alloc)
	func() {
		item := pool.Acquire(1)
		item.Arena.Alloc(100, 1)
		pool.Release(item)
	}()
	require.Equal(t, 1, native.Live())

	// The pool only holds a weak pointer: once collected, the cleanup
	// returns the native buffer.
	require.Eventually(t, func() bool {
		runtime.GC()
		return native.Live() == 0
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("releasing native buffers of collected arena").Len() == 1
	}, time.Second, 10*time.Millisecond)

	// The collected item is skipped.
	item := pool.Acquire(1)
	require.Equal(t, 0, item.Arena.Len())
	item.Arena.Release()
}

func TestPoolKeepsBuffersOfHeldArena(t *testing.T) {
	alloc, native := newTestAllocator(t)
	pool := NewArenaPool(alloc)

	arena := pool.Acquire(1).Arena
	p := (*uint64)(arena.Alloc(8, 8))
	require.NotNil(t, p)
	*p = 42
	require.Equal(t, 1, native.Live())

	// The item is unreachable but the arena is not.
	for i := 0; i < 5; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, 1, native.Live())
	require.Equal(t, 8, arena.Len())
	require.Equal(t, uint64(42), *p)

	arena = nil
	require.Eventually(t, func() bool {
		runtime.GC()
		return native.Live() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPoolConcurrentUse(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	pool := NewArenaPool(alloc)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[*PoolItem]struct{})
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(key uint64) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				item := pool.Acquire(key)
				buf := AllocateSlice[byte](item.Arena, 256, 256)
				buf[0] = byte(key)

				mu.Lock()
				seen[item] = struct{}{}
				mu.Unlock()
				pool.Release(item)
			}
		}(uint64(g))
	}
	wg.Wait()

	require.LessOrEqual(t, len(seen), 8)
	for item := range seen {
		item.Arena.Release()
	}
}
