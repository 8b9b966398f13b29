// SPDX-License-Identifier: Apache-2.0

package ctl

import (
	"unicode/utf8"
	"unsafe"

	jemalloc "github.com/wundergraph/go-jemalloc"
)

// Read returns the value of the control called name.
//
// It panics if name is empty or not NUL-terminated. A control whose size
// differs from the size of T is ErrInvalidArgument.
func Read[T Value](n jemalloc.Native, name Name) (T, error) {
	return read[T](n, name)
}

// ReadMIB is Read addressed by a MIB.
func ReadMIB[T Value](n jemalloc.Native, mib MIB) (T, error) {
	return readMIB[T](n, mib)
}

// Write sets the control called name to v.
func Write[T Value](n jemalloc.Native, name Name, v T) error {
	name.validate()
	return jemalloc.StatusError(n.Mallctl(string(name), nil, nil, unsafe.Pointer(&v), unsafe.Sizeof(v)))
}

// WriteMIB is Write addressed by a MIB.
func WriteMIB[T Value](n jemalloc.Native, mib MIB, v T) error {
	return jemalloc.StatusError(n.MallctlByMIB(mib.slice(), nil, nil, unsafe.Pointer(&v), unsafe.Sizeof(v)))
}

// ReadWrite sets the control called name to v and returns its previous
// value, in a single native call.
func ReadWrite[T Value](n jemalloc.Native, name Name, v T) (T, error) {
	name.validate()
	var old T
	size := unsafe.Sizeof(old)
	if err := jemalloc.StatusError(n.Mallctl(string(name), unsafe.Pointer(&old), &size, unsafe.Pointer(&v), unsafe.Sizeof(v))); err != nil {
		return *new(T), err
	}
	return checked(old, size)
}

// ReadWriteMIB is ReadWrite addressed by a MIB.
func ReadWriteMIB[T Value](n jemalloc.Native, mib MIB, v T) (T, error) {
	var old T
	size := unsafe.Sizeof(old)
	if err := jemalloc.StatusError(n.MallctlByMIB(mib.slice(), unsafe.Pointer(&old), &size, unsafe.Pointer(&v), unsafe.Sizeof(v))); err != nil {
		return *new(T), err
	}
	return checked(old, size)
}

// ReadString returns the value of a control holding a C string, such as
// "version". The result aliases jemalloc's static storage and is never
// freed. A NULL pointer reads as the empty string; bytes that are not
// valid UTF-8 are ErrInvalidArgument.
func ReadString(n jemalloc.Native, name Name) (string, error) {
	p, err := read[*byte](n, name)
	if err != nil {
		return "", err
	}
	return goString(p)
}

// ReadStringMIB is ReadString addressed by a MIB.
func ReadStringMIB(n jemalloc.Native, mib MIB) (string, error) {
	p, err := readMIB[*byte](n, mib)
	if err != nil {
		return "", err
	}
	return goString(p)
}

// Invoke triggers a control that takes no value, such as
// "thread.tcache.flush".
func Invoke(n jemalloc.Native, name Name) error {
	name.validate()
	return jemalloc.StatusError(n.Mallctl(string(name), nil, nil, nil, 0))
}

// InvokeMIB is Invoke addressed by a MIB.
func InvokeMIB(n jemalloc.Native, mib MIB) error {
	return jemalloc.StatusError(n.MallctlByMIB(mib.slice(), nil, nil, nil, 0))
}

func read[T any](n jemalloc.Native, name Name) (T, error) {
	name.validate()
	var v T
	size := unsafe.Sizeof(v)
	if err := jemalloc.StatusError(n.Mallctl(string(name), unsafe.Pointer(&v), &size, nil, 0)); err != nil {
		return *new(T), err
	}
	return checked(v, size)
}

func readMIB[T any](n jemalloc.Native, mib MIB) (T, error) {
	var v T
	size := unsafe.Sizeof(v)
	if err := jemalloc.StatusError(n.MallctlByMIB(mib.slice(), unsafe.Pointer(&v), &size, nil, 0)); err != nil {
		return *new(T), err
	}
	return checked(v, size)
}

// checked rejects a value whose reported length is not the size of T.
func checked[T any](v T, size uintptr) (T, error) {
	if size != unsafe.Sizeof(v) {
		return *new(T), jemalloc.ErrInvalidArgument
	}
	return v, nil
}

func goString(p *byte) (string, error) {
	if p == nil {
		return "", nil
	}
	length := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), length)) != 0 {
		length++
	}
	s := unsafe.String(p, length)
	if !utf8.ValidString(s) {
		return "", jemalloc.ErrInvalidArgument
	}
	return s, nil
}
