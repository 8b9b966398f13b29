// SPDX-License-Identifier: Apache-2.0

//go:build !jemalloc || !cgo

package jemalloc

import (
	"github.com/wundergraph/go-jemalloc/internal/sim"
)

// Linked reports whether jemalloc is linked into the binary. Build with
// `-tags jemalloc` and cgo enabled to link it.
const Linked = false

func newDefaultNative() Native {
	return sim.New()
}
