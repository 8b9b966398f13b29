// SPDX-License-Identifier: Apache-2.0

package ctl

import (
	jemalloc "github.com/wundergraph/go-jemalloc"
)

// Key is a control of type T addressed by name.
type Key[T Value] struct {
	name Name
}

// NewKey returns the key of the control at the dotted path. It panics on a
// malformed path, see NewName.
func NewKey[T Value](path string) Key[T] {
	return Key[T]{name: NewName(path)}
}

// Name returns the control name.
func (k Key[T]) Name() Name {
	return k.name
}

// Read returns the current value.
func (k Key[T]) Read(n jemalloc.Native) (T, error) {
	return Read[T](n, k.name)
}

// Write sets the value.
func (k Key[T]) Write(n jemalloc.Native, v T) error {
	return Write(n, k.name, v)
}

// ReadWrite sets the value and returns the previous one.
func (k Key[T]) ReadWrite(n jemalloc.Native, v T) (T, error) {
	return ReadWrite(n, k.name, v)
}

// MIB resolves the key for repeated use.
func (k Key[T]) MIB(n jemalloc.Native) (Mib[T], error) {
	mib, err := Resolve(n, k.name)
	if err != nil {
		return Mib[T]{}, err
	}
	return Mib[T]{mib: mib}, nil
}

// Mib is a resolved Key. It is immutable and may be copied and shared
// between goroutines.
type Mib[T Value] struct {
	mib MIB
}

// MIB returns the numeric path.
func (m Mib[T]) MIB() MIB {
	return m.mib
}

// WithIndex returns the sibling control whose component pos is v.
func (m Mib[T]) WithIndex(pos int, v uintptr) Mib[T] {
	return Mib[T]{mib: m.mib.WithIndex(pos, v)}
}

// Read returns the current value.
func (m Mib[T]) Read(n jemalloc.Native) (T, error) {
	return ReadMIB[T](n, m.mib)
}

// Write sets the value.
func (m Mib[T]) Write(n jemalloc.Native, v T) error {
	return WriteMIB(n, m.mib, v)
}

// ReadWrite sets the value and returns the previous one.
func (m Mib[T]) ReadWrite(n jemalloc.Native, v T) (T, error) {
	return ReadWriteMIB(n, m.mib, v)
}

// StringKey is a control holding a C string, addressed by name.
type StringKey struct {
	name Name
}

// NewStringKey returns the key of the string control at the dotted path.
func NewStringKey(path string) StringKey {
	return StringKey{name: NewName(path)}
}

// Name returns the control name.
func (k StringKey) Name() Name {
	return k.name
}

// Read returns the current value. See ReadString.
func (k StringKey) Read(n jemalloc.Native) (string, error) {
	return ReadString(n, k.name)
}

// MIB resolves the key for repeated use.
func (k StringKey) MIB(n jemalloc.Native) (StringMib, error) {
	mib, err := Resolve(n, k.name)
	if err != nil {
		return StringMib{}, err
	}
	return StringMib{mib: mib}, nil
}

// StringMib is a resolved StringKey.
type StringMib struct {
	mib MIB
}

// MIB returns the numeric path.
func (m StringMib) MIB() MIB {
	return m.mib
}

// Read returns the current value. See ReadString.
func (m StringMib) Read(n jemalloc.Native) (string, error) {
	return ReadStringMIB(n, m.mib)
}

// VoidKey is a control that takes no value and performs an action when
// invoked.
type VoidKey struct {
	name Name
}

// NewVoidKey returns the key of the void control at the dotted path.
func NewVoidKey(path string) VoidKey {
	return VoidKey{name: NewName(path)}
}

// Name returns the control name.
func (k VoidKey) Name() Name {
	return k.name
}

// Invoke performs the action.
func (k VoidKey) Invoke(n jemalloc.Native) error {
	return Invoke(n, k.name)
}

// MIB resolves the key for repeated use.
func (k VoidKey) MIB(n jemalloc.Native) (VoidMib, error) {
	mib, err := Resolve(n, k.name)
	if err != nil {
		return VoidMib{}, err
	}
	return VoidMib{mib: mib}, nil
}

// VoidMib is a resolved VoidKey.
type VoidMib struct {
	mib MIB
}

// MIB returns the numeric path.
func (m VoidMib) MIB() MIB {
	return m.mib
}

// WithIndex returns the sibling control whose component pos is v.
func (m VoidMib) WithIndex(pos int, v uintptr) VoidMib {
	return VoidMib{mib: m.mib.WithIndex(pos, v)}
}

// Invoke performs the action.
func (m VoidMib) Invoke(n jemalloc.Native) error {
	return InvokeMIB(n, m.mib)
}
