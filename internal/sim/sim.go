// SPDX-License-Identifier: Apache-2.0

// Package sim is an in-process stand-in for the jemalloc C interface.
//
// It serves the same entry points as the native library with memory taken
// from the Go heap, and a mallctl namespace that mirrors the subset of
// jemalloc's controls used by this module: same names, same MIB layout,
// same value widths and the same errno conventions. It is the default
// native allocator of binaries built without jemalloc, and the test double
// of every package that talks to the native layer.
package sim

import (
	"math/bits"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/wundergraph/go-jemalloc/internal/tid"
)

const version = "5.3.0-0-g54eaed1d8b56b1aa528be3bdd1877e59c56fa90c"

// Sim is a simulated jemalloc instance. Its methods are safe for
// concurrent use.
type Sim struct {
	mu sync.Mutex

	blocks  map[uintptr]*block
	threads map[int]*threadStats
	cstrs   map[string][]byte
	root    *node

	epoch                uint64
	snap                 snapshot
	backgroundThread     bool
	maxBackgroundThreads uintptr
	tcacheEnabled        bool
	narenas              uint32
	bins                 []uintptr

	purges      atomic.Int64
	decays      atomic.Int64
	tcacheFlush atomic.Int64
}

type block struct {
	buf    []byte // backing store; the block starts at buf[off]
	off    uintptr
	usable uintptr
}

func (b *block) capacity() uintptr {
	return uintptr(len(b.buf)) - b.off
}

type threadStats struct {
	allocated   uint64
	deallocated uint64
}

// New returns an empty simulated allocator at epoch 1.
func New() *Sim {
	s := &Sim{
		blocks:               make(map[uintptr]*block),
		threads:              make(map[int]*threadStats),
		cstrs:                make(map[string][]byte),
		epoch:                1,
		maxBackgroundThreads: uintptr(runtime.NumCPU()),
		tcacheEnabled:        true,
		narenas:              uint32(4 * runtime.NumCPU()),
		bins:                 binSizes(),
	}
	s.root = namespace()
	s.refresh()
	return s
}

func (s *Sim) thread() *threadStats {
	id := tid.Current()
	t, ok := s.threads[id]
	if !ok {
		t = new(threadStats)
		s.threads[id] = t
	}
	return t
}

func (s *Sim) alloc(size uintptr, flags int32) unsafe.Pointer {
	align := flagsAlign(flags)
	usable := usableSize(size, align)
	if usable == 0 {
		return nil
	}
	// Leave headroom up to the next power of two so that in-place growth
	// through Xallocx has somewhere to go.
	capacity := uintptr(1) << bits.Len64(uint64(usable-1))
	if capacity > maxBacking || align > maxBacking-capacity {
		return nil
	}
	buf := make([]byte, capacity+align)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	b := &block{
		buf:    buf,
		off:    alignUp(base, align) - base,
		usable: usable,
	}
	ptr := unsafe.Pointer(&buf[b.off])

	s.mu.Lock()
	s.blocks[uintptr(ptr)] = b
	atomic.AddUint64(&s.thread().allocated, uint64(usable))
	s.mu.Unlock()
	return ptr
}

func (s *Sim) lookup(ptr unsafe.Pointer) *block {
	b, ok := s.blocks[uintptr(ptr)]
	if !ok {
		panic("sim: pointer was not allocated by this allocator")
	}
	return b
}

func (s *Sim) get(ptr unsafe.Pointer) *block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(ptr)
}

// Mallocx allocates at least size bytes as directed by flags.
func (s *Sim) Mallocx(size uintptr, flags int32) unsafe.Pointer {
	// Go memory is zeroed, which satisfies the zero flag too.
	return s.alloc(size, flags)
}

// Calloc allocates zeroed memory for n objects of size bytes each.
func (s *Sim) Calloc(n, size uintptr) unsafe.Pointer {
	hi, total := bits.Mul64(uint64(n), uint64(size))
	if hi != 0 || total > maxAlloc {
		return nil
	}
	return s.alloc(uintptr(total), 0)
}

// Rallocx moves the allocation at ptr into a new block of at least size
// bytes. The old block is kept when the new one cannot be allocated.
func (s *Sim) Rallocx(ptr unsafe.Pointer, size uintptr, flags int32) unsafe.Pointer {
	old := s.get(ptr)

	moved := s.alloc(size, flags)
	if moved == nil {
		return nil
	}
	n := min(old.usable, usableSize(size, flagsAlign(flags)))
	copy(unsafe.Slice((*byte)(moved), n), unsafe.Slice((*byte)(ptr), n))
	s.free(ptr)
	return moved
}

// Xallocx resizes the allocation at ptr in place, preferring size+extra
// bytes, and returns the resulting usable size.
func (s *Sim) Xallocx(ptr unsafe.Pointer, size, extra uintptr, flags int32) uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.lookup(ptr)
	align := flagsAlign(flags)
	usable := b.usable
	if want := usableSize(size+extra, align); want != 0 && want <= b.capacity() {
		usable = want
	} else if want := usableSize(size, align); want != 0 && want <= b.capacity() {
		usable = want
	}
	t := s.thread()
	if usable > b.usable {
		atomic.AddUint64(&t.allocated, uint64(usable-b.usable))
	} else {
		atomic.AddUint64(&t.deallocated, uint64(b.usable-usable))
	}
	b.usable = usable
	return usable
}

// Sdallocx frees ptr. size must map to the usable size of the allocation,
// as jemalloc requires; a mismatch panics.
func (s *Sim) Sdallocx(ptr unsafe.Pointer, size uintptr, flags int32) {
	b := s.get(ptr)
	if usableSize(size, flagsAlign(flags)) != b.usable {
		panic("sim: sized deallocation with a size that does not match the allocation")
	}
	s.free(ptr)
}

func (s *Sim) free(ptr unsafe.Pointer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.lookup(ptr)
	delete(s.blocks, uintptr(ptr))
	atomic.AddUint64(&s.thread().deallocated, uint64(b.usable))
}

// Nallocx returns the usable size of an equivalent Mallocx call, or 0 when
// the request cannot be satisfied.
func (s *Sim) Nallocx(size uintptr, flags int32) uintptr {
	return usableSize(size, flagsAlign(flags))
}

// UsableSize returns the usable size of the allocation at ptr.
func (s *Sim) UsableSize(ptr unsafe.Pointer) uintptr {
	return s.get(ptr).usable
}

// Live returns the number of allocations not yet freed.
func (s *Sim) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blocks)
}

// Purges returns how many arena purges were requested.
func (s *Sim) Purges() int64 {
	return s.purges.Load()
}

// Decays returns how many arena decays were requested.
func (s *Sim) Decays() int64 {
	return s.decays.Load()
}

// TcacheFlushes returns how many thread cache flushes were requested.
func (s *Sim) TcacheFlushes() int64 {
	return s.tcacheFlush.Load()
}
