// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wundergraph/go-jemalloc/internal/sim"
)

var _ Native = (*sim.Sim)(nil)

// newTestAllocator returns an allocator over a fresh simulated native and
// checks that everything allocated through it is freed by the end of the
// test.
func newTestAllocator(t testing.TB) (*Allocator, *sim.Sim) {
	t.Helper()
	native := sim.New()
	t.Cleanup(func() {
		require.Zero(t, native.Live(), "native allocations leaked")
	})
	return New(native), native
}
