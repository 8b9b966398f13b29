// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"strconv"

	"golang.org/x/sys/unix"
)

// Error is a status code returned by the mallctl family of functions.
type Error int32

const (
	// ErrInvalidArgument: newp is not nil and newlen is too large or too small,
	// or *oldlenp is too large or too small. Also returned when a string value
	// is not valid UTF-8.
	ErrInvalidArgument = Error(unix.EINVAL)
	// ErrUnknownKey: name or mib specifies an unknown or invalid value.
	ErrUnknownKey = Error(unix.ENOENT)
	// ErrPermissionDenied: attempt to read or write a void value, or to write
	// a read-only value.
	ErrPermissionDenied = Error(unix.EPERM)
	// ErrAllocationFailure: a memory allocation failure occurred.
	ErrAllocationFailure = Error(unix.EAGAIN)
	// ErrSideEffectFailure: an interface with side effects failed in some way
	// not directly related to mallctl read/write processing.
	ErrSideEffectFailure = Error(unix.EFAULT)
)

func (e Error) Error() string {
	switch e {
	case ErrInvalidArgument:
		return "jemalloc: newp is not NULL, and newlen is too large or too small; " +
			"alternatively, *oldlenp is too large or too small"
	case ErrUnknownKey:
		return "jemalloc: name or mib specifies an unknown/invalid value"
	case ErrPermissionDenied:
		return "jemalloc: attempt to read or write void value, or attempt to write read-only value"
	case ErrAllocationFailure:
		return "jemalloc: a memory allocation failure occurred"
	case ErrSideEffectFailure:
		return "jemalloc: an interface with side effects failed in some way " +
			"not directly related to mallctl read/write processing"
	}
	return "jemalloc: unknown error code " + strconv.Itoa(int(e))
}

// Errno returns the status code as a unix.Errno.
func (e Error) Errno() unix.Errno {
	return unix.Errno(e)
}

// Is reports whether target is the same status code, either as an Error or
// as a unix.Errno.
func (e Error) Is(target error) bool {
	switch t := target.(type) {
	case Error:
		return e == t
	case unix.Errno:
		return unix.Errno(e) == t
	}
	return false
}

// StatusError converts a native status code into an error. Zero is success.
func StatusError(code int32) error {
	if code == 0 {
		return nil
	}
	return Error(code)
}
