// SPDX-License-Identifier: Apache-2.0

package ctl

import (
	"strconv"
	"strings"
)

// Name is a control name in the form mallctl expects: a non-empty dotted
// path followed by a NUL byte, such as "stats.allocated\x00".
//
// String constants convert to Name implicitly, so raw calls can be written
// as ctl.Read[uint64](native, "epoch\x00"). NewName builds a Name from a
// path without the terminator.
type Name string

// NewName returns the Name of a dotted path. It panics if path is empty,
// has an empty component or contains a NUL byte.
func NewName(path string) Name {
	if path == "" {
		panic("ctl: empty control path")
	}
	if strings.IndexByte(path, 0) >= 0 {
		panic("ctl: control path contains a NUL byte: " + strconv.Quote(path))
	}
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			panic("ctl: empty component in control path " + strconv.Quote(path))
		}
	}
	return Name(path + "\x00")
}

// Path returns the name without its terminator.
func (n Name) Path() string {
	return strings.TrimSuffix(string(n), "\x00")
}

func (n Name) String() string {
	return n.Path()
}

// validate panics unless n is non-empty and NUL-terminated. Passing a
// malformed name to the native parser would read past the end of it.
func (n Name) validate() {
	if len(n) == 0 {
		panic("ctl: empty control name")
	}
	if n[len(n)-1] != 0 {
		panic("ctl: control name is not NUL-terminated: " + strconv.Quote(string(n)))
	}
}
