// SPDX-License-Identifier: Apache-2.0

//go:build !arm && !mips && !mipsle

package jemalloc

// MinAlign is the alignment every allocation is guaranteed to have without
// passing alignment flags.
const MinAlign uintptr = 16
