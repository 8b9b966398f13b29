// SPDX-License-Identifier: Apache-2.0

package ctl

// Value is the set of types a control value can have. Each has a fixed
// size that must equal the size jemalloc reports for the control.
type Value interface {
	~bool |
		~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr |
		~float32 | ~float64
}
