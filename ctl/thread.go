// SPDX-License-Identifier: Apache-2.0

package ctl

import (
	"sync/atomic"

	jemalloc "github.com/wundergraph/go-jemalloc"
	"github.com/wundergraph/go-jemalloc/internal/tid"
)

// Per-thread statistics and the calling thread's cache controls.
var (
	// ThreadAllocated is the total number of bytes allocated by the calling
	// thread. The count never wraps in practice and never decreases.
	ThreadAllocated = NewKey[uint64]("thread.allocated")
	// ThreadDeallocated is the total number of bytes deallocated by the
	// calling thread.
	ThreadDeallocated = NewKey[uint64]("thread.deallocated")

	// ThreadTcacheEnabled enables or disables the calling thread's cache.
	ThreadTcacheEnabled = NewKey[bool]("thread.tcache.enabled")
	// ThreadTcacheFlush flushes the calling thread's cache.
	ThreadTcacheFlush = NewVoidKey("thread.tcache.flush")

	threadAllocatedP   = NewName("thread.allocatedp")
	threadDeallocatedP = NewName("thread.deallocatedp")
)

// ThreadLocal reads a per-thread counter through the pointer jemalloc keeps
// for the thread that created it. It avoids a mallctl call per read.
//
// The pointer is only meaningful on its own thread: lock the goroutine to
// its OS thread with runtime.LockOSThread before creating a ThreadLocal
// and keep it locked for as long as the ThreadLocal is used. A ThreadLocal
// must not be copied or handed to another goroutine; Get panics when it
// detects a different thread.
type ThreadLocal struct {
	noCopy noCopy
	p      *uint64
	tid    int
}

// Get returns the current value of the counter.
func (t *ThreadLocal) Get() uint64 {
	if tid.Supported && tid.Current() != t.tid {
		panic("ctl: ThreadLocal used from a thread other than the one that created it")
	}
	return atomic.LoadUint64(t.p)
}

// ThreadAllocatedP returns a ThreadLocal reading ThreadAllocated of the
// calling thread.
func ThreadAllocatedP(n jemalloc.Native) (*ThreadLocal, error) {
	return threadLocal(n, threadAllocatedP)
}

// ThreadDeallocatedP returns a ThreadLocal reading ThreadDeallocated of the
// calling thread.
func ThreadDeallocatedP(n jemalloc.Native) (*ThreadLocal, error) {
	return threadLocal(n, threadDeallocatedP)
}

func threadLocal(n jemalloc.Native, name Name) (*ThreadLocal, error) {
	p, err := read[*uint64](n, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, jemalloc.ErrInvalidArgument
	}
	return &ThreadLocal{p: p, tid: tid.Current()}, nil
}

// noCopy makes go vet's copylocks check flag copies of the embedding
// struct.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
