// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"math/bits"
)

// ZeroFlag is the MALLOCX_ZERO bit: the returned memory is zero-filled.
const ZeroFlag int32 = 0x40

// AlignToFlags returns the flags value that requests the given alignment
// from the native allocator. The alignment must be a power of two; this is
// not checked.
//
// Alignments up to MinAlign are already guaranteed by the allocator, so no
// alignment bits are encoded for them. Larger alignments are encoded as
// log2(alignment), which is what MALLOCX_ALIGN expands to.
func AlignToFlags(alignment uintptr) int32 {
	if alignment <= MinAlign {
		return 0
	}
	return int32(bits.TrailingZeros64(uint64(alignment)))
}

// Flags is AlignToFlags with ZeroFlag set when zero is true.
func Flags(alignment uintptr, zero bool) int32 {
	flags := AlignToFlags(alignment)
	if zero {
		flags |= ZeroFlag
	}
	return flags
}
