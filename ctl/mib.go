// SPDX-License-Identifier: Apache-2.0

package ctl

import (
	"fmt"

	jemalloc "github.com/wundergraph/go-jemalloc"
)

// MaxDepth is the deepest control path jemalloc defines.
const MaxDepth = 7

// MIB is a resolved control name. It is a small value: copying it is cheap,
// and a MIB shared between goroutines is safe to use concurrently.
//
// A MIB stays valid for the life of the process; jemalloc does not reshape
// its control namespace at run time.
type MIB struct {
	path  [MaxDepth]uintptr
	depth int
}

// Len returns the number of components.
func (m MIB) Len() int {
	return m.depth
}

// At returns the i'th component.
func (m MIB) At(i int) uintptr {
	if i < 0 || i >= m.depth {
		panic(fmt.Sprintf("ctl: MIB component %d out of range [0:%d]", i, m.depth))
	}
	return m.path[i]
}

// WithIndex returns a copy of m with component pos set to v. It addresses
// siblings of an indexed path: resolve "arenas.bin.0.size" once, then
// WithIndex(2, i) reaches the size of bin i.
func (m MIB) WithIndex(pos int, v uintptr) MIB {
	if pos < 0 || pos >= m.depth {
		panic(fmt.Sprintf("ctl: MIB component %d out of range [0:%d]", pos, m.depth))
	}
	m.path[pos] = v
	return m
}

// Components returns a copy of the numeric path.
func (m MIB) Components() []uintptr {
	return append([]uintptr(nil), m.path[:m.depth]...)
}

func (m *MIB) slice() []uintptr {
	return m.path[:m.depth]
}

// Resolve translates name into a MIB.
func Resolve(n jemalloc.Native, name Name) (MIB, error) {
	name.validate()
	var m MIB
	depth := uintptr(MaxDepth)
	if err := jemalloc.StatusError(n.MallctlNameToMIB(string(name), m.path[:], &depth)); err != nil {
		return MIB{}, err
	}
	m.depth = int(depth)
	return m, nil
}

// NameToMIB translates name into mib, whose length must be the depth of the
// name; a mib longer than the name is ErrInvalidArgument. A shorter mib
// receives the leading components, a partial MIB the native layer accepts.
func NameToMIB(n jemalloc.Native, name Name, mib []uintptr) error {
	name.validate()
	depth := uintptr(len(mib))
	if err := jemalloc.StatusError(n.MallctlNameToMIB(string(name), mib, &depth)); err != nil {
		return err
	}
	if depth != uintptr(len(mib)) {
		return jemalloc.ErrInvalidArgument
	}
	return nil
}
