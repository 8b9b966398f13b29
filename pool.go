// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"runtime"
	"sync"
	"weak"

	"go.uber.org/zap"

	"github.com/wundergraph/go-jemalloc/internal/logutil"
)

const (
	// sizeWindow is the number of releases the per-key size estimate
	// averages over.
	sizeWindow = 50

	defaultPoolArenaSize = 1024 * 1024 // 1MB
)

// Pool is a thread-safe pool of monotonic arenas backed by native memory.
//
// Idle arenas are held through weak pointers, so the garbage collector
// decides how many of them survive: under memory pressure it collects
// them, and a cleanup attached to every arena returns its native buffers
// to the allocator once the arena itself is unreachable.
//
// New arenas are sized from the recent peak usage of the key they are
// acquired for.
type Pool struct {
	alloc *Allocator
	pool  []weak.Pointer[PoolItem]
	sizes map[uint64]*arenaPoolItemSize
	mu    sync.Mutex
}

// arenaPoolItemSize tracks the peak usage of the last arenas released for a
// key.
type arenaPoolItemSize struct {
	count      int
	totalBytes int
}

// PoolItem is an arena on loan from a Pool.
type PoolItem struct {
	Arena Arena
	Key   uint64
}

// NewArenaPool returns an empty pool whose arenas take their buffers from
// alloc. A nil alloc selects the default native allocator.
func NewArenaPool(alloc *Allocator) *Pool {
	if alloc == nil {
		alloc = New(nil)
	}
	return &Pool{
		alloc: alloc,
		sizes: make(map[uint64]*arenaPoolItemSize),
	}
}

// Acquire returns an idle arena, or a new one sized for key when none is
// left.
func (p *Pool) Acquire(key uint64) *PoolItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.pool) > 0 {
		last := len(p.pool) - 1
		wp := p.pool[last]
		p.pool = p.pool[:last]

		// nil when the item has been collected
		if item := wp.Value(); item != nil {
			item.Key = key
			return item
		}
	}

	a := newMonotonicArena(WithAllocator(p.alloc), WithMinBufferSize(p.getArenaSize(key)))
	item := &PoolItem{Arena: a, Key: key}
	runtime.AddCleanup(a, releaseCollected, a.arenaBuffers)
	return item
}

// releaseCollected frees the buffers of an arena that was collected. The
// arena may outlive its PoolItem.
func releaseCollected(b *arenaBuffers) {
	if n := b.native(); n > 0 {
		logutil.Debug("releasing native buffers of collected arena", zap.Uint64("bytes", uint64(n)))
	}
	b.release()
}

// Release resets item's arena and returns it to the pool. Its peak usage
// feeds the size of future arenas for the same key.
func (p *Pool) Release(item *PoolItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.release(item)
}

// ReleaseMany is Release for several items under one lock acquisition.
func (p *Pool) ReleaseMany(items []*PoolItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, item := range items {
		p.release(item)
	}
}

func (p *Pool) release(item *PoolItem) {
	peak := item.Arena.Peak()
	item.Arena.Reset()

	if size, ok := p.sizes[item.Key]; ok {
		if size.count == sizeWindow {
			size.count = 1
			size.totalBytes /= sizeWindow
		}
		size.count++
		size.totalBytes += peak
	} else {
		p.sizes[item.Key] = &arenaPoolItemSize{count: 1, totalBytes: peak}
	}

	item.Key = 0
	p.pool = append(p.pool, weak.Make(item))
}

// getArenaSize returns the buffer size for a new arena acquired for key.
func (p *Pool) getArenaSize(key uint64) int {
	if size, ok := p.sizes[key]; ok && size.totalBytes > 0 {
		return size.totalBytes / size.count
	}
	return defaultPoolArenaSize
}
