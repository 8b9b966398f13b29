// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// allArenas is MALLCTL_ARENAS_ALL: an arena index addressing every arena.
const allArenas = 4096

const (
	statusOK     int32 = 0
	statusInval        = int32(unix.EINVAL)
	statusNoEnt        = int32(unix.ENOENT)
	statusPerm         = int32(unix.EPERM)
	maxValueSize       = 16
)

// node is one component of the control namespace. Named children are
// addressed in a MIB by their position; indexed children by the number
// itself.
type node struct {
	name     string
	children []*node
	indexed  *node
	limit    func(s *Sim) uintptr
	allowAll bool // accepts allArenas beyond limit
	ctl      *control
}

// control is a leaf of the namespace.
type control struct {
	size  uintptr
	read  func(s *Sim, mib []uintptr, dst unsafe.Pointer)
	write func(s *Sim, mib []uintptr, src unsafe.Pointer) int32
	exec  func(s *Sim, mib []uintptr) int32
}

func (n *node) child(name string) (uintptr, *node) {
	for i, c := range n.children {
		if c.name == name {
			return uintptr(i), c
		}
	}
	return 0, nil
}

func (n *node) step(s *Sim, component uintptr) *node {
	if n.indexed != nil {
		if component < n.indexed.limit(s) || (n.indexed.allowAll && component == allArenas) {
			return n.indexed
		}
		return nil
	}
	if component < uintptr(len(n.children)) {
		return n.children[component]
	}
	return nil
}

// resolve walks name and returns its MIB components, stopping after max
// components.
func (s *Sim) resolve(name string, max int) ([]uintptr, *node, int32) {
	end := strings.IndexByte(name, 0)
	if end < 0 {
		return nil, nil, statusInval
	}
	name = name[:end]
	if name == "" {
		return nil, nil, statusNoEnt
	}

	var mib []uintptr
	n := s.root
	for _, part := range strings.Split(name, ".") {
		if len(mib) == max {
			break
		}
		var next *node
		var component uintptr
		if n.indexed != nil {
			i, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, nil, statusNoEnt
			}
			component = uintptr(i)
			next = n.step(s, component)
		} else {
			component, next = n.child(part)
		}
		if next == nil {
			return nil, nil, statusNoEnt
		}
		mib = append(mib, component)
		n = next
	}
	return mib, n, statusOK
}

func (s *Sim) walk(mib []uintptr) *node {
	n := s.root
	for _, component := range mib {
		if n = n.step(s, component); n == nil {
			return nil
		}
	}
	return n
}

// Mallctl reads and/or writes the control value called name.
func (s *Sim) Mallctl(name string, oldp unsafe.Pointer, oldlenp *uintptr, newp unsafe.Pointer, newlen uintptr) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	mib, n, status := s.resolve(name, -1)
	if status != statusOK {
		return status
	}
	return s.call(n, mib, oldp, oldlenp, newp, newlen)
}

// MallctlNameToMIB translates name into mib. A mib shorter than the name
// yields a partial MIB.
func (s *Sim) MallctlNameToMIB(name string, mib []uintptr, miblenp *uintptr) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if miblenp == nil || *miblenp > uintptr(len(mib)) {
		return statusInval
	}
	path, _, status := s.resolve(name, int(*miblenp))
	if status != statusOK {
		return status
	}
	*miblenp = uintptr(copy(mib, path))
	return statusOK
}

// MallctlByMIB is Mallctl addressed by a MIB.
func (s *Sim) MallctlByMIB(mib []uintptr, oldp unsafe.Pointer, oldlenp *uintptr, newp unsafe.Pointer, newlen uintptr) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.walk(mib)
	if n == nil {
		return statusNoEnt
	}
	return s.call(n, mib, oldp, oldlenp, newp, newlen)
}

func (s *Sim) call(n *node, mib []uintptr, oldp unsafe.Pointer, oldlenp *uintptr, newp unsafe.Pointer, newlen uintptr) int32 {
	c := n.ctl
	if c == nil {
		return statusNoEnt
	}
	reading := oldp != nil || oldlenp != nil
	writing := newp != nil || newlen != 0

	if c.exec != nil {
		if reading || writing {
			return statusPerm
		}
		return c.exec(s, mib)
	}
	if (reading && c.read == nil) || (writing && c.write == nil) {
		return statusPerm
	}

	// The value is captured before a write is applied, so a read-write call
	// observes the previous value.
	var old [maxValueSize / 8]uint64
	if reading {
		c.read(s, mib, unsafe.Pointer(&old))
	}
	if writing {
		if newp == nil || newlen != c.size {
			return statusInval
		}
		if status := c.write(s, mib, newp); status != statusOK {
			return status
		}
	}
	if oldp != nil && oldlenp != nil {
		copied := min(*oldlenp, c.size)
		copy(unsafe.Slice((*byte)(oldp), copied), unsafe.Slice((*byte)(unsafe.Pointer(&old)), copied))
		if *oldlenp != c.size {
			*oldlenp = copied
			return statusInval
		}
	}
	return statusOK
}

// value builds a control of type T. A nil get makes it write-only, a nil
// set read-only.
func value[T any](get func(s *Sim, mib []uintptr) T, set func(s *Sim, mib []uintptr, v T) int32) *control {
	var zero T
	if unsafe.Sizeof(zero) > maxValueSize {
		panic("sim: control value too large")
	}
	c := &control{size: unsafe.Sizeof(zero)}
	if get != nil {
		c.read = func(s *Sim, mib []uintptr, dst unsafe.Pointer) {
			*(*T)(dst) = get(s, mib)
		}
	}
	if set != nil {
		c.write = func(s *Sim, mib []uintptr, src unsafe.Pointer) int32 {
			return set(s, mib, *(*T)(src))
		}
	}
	return c
}

func void(exec func(s *Sim, mib []uintptr) int32) *control {
	return &control{exec: exec}
}

// cstring returns a pointer to a NUL-terminated copy of str that stays valid
// for the lifetime of s, the way jemalloc hands out static strings.
func (s *Sim) cstring(str string) *byte {
	b, ok := s.cstrs[str]
	if !ok {
		b = append([]byte(str), 0)
		s.cstrs[str] = b
	}
	return &b[0]
}
