// SPDX-License-Identifier: Apache-2.0

//go:build linux

package tid

import (
	"golang.org/x/sys/unix"
)

// Supported reports whether Current identifies threads on this platform.
const Supported = true

// Current returns the id of the calling OS thread.
func Current() int {
	return unix.Gettid()
}
