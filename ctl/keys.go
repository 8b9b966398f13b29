// SPDX-License-Identifier: Apache-2.0

package ctl

import (
	jemalloc "github.com/wundergraph/go-jemalloc"
)

var (
	// Version is the jemalloc version string.
	Version = NewStringKey("version")

	// Epoch is the counter that controls when cached statistics are
	// refreshed. Writing any value to it refreshes them and advances the
	// counter.
	Epoch = NewKey[uint64]("epoch")

	// BackgroundThread enables or disables the internal background worker
	// threads that purge unused dirty memory.
	BackgroundThread = NewKey[bool]("background_thread")

	// MaxBackgroundThreads is the maximum number of background threads that
	// will be created when BackgroundThread is enabled.
	MaxBackgroundThreads = NewKey[uintptr]("max_background_threads")
)

// AdvanceEpoch refreshes the statistics jemalloc caches and returns the
// epoch they were refreshed from. The value returned is the epoch before
// the advance.
func AdvanceEpoch(n jemalloc.Native) (uint64, error) {
	return Epoch.ReadWrite(n, 1)
}
