// SPDX-License-Identifier: Apache-2.0

//go:build jemalloc && cgo

package jemalloc

/*
// This cgo directive is what actually causes jemalloc to be linked in to the
// final Go executable.
#cgo pkg-config: jemalloc

#include <stdlib.h>
#include <string.h>
#include <jemalloc/jemalloc.h>

// The je_ names resolve to the unprefixed symbols on a default build and to
// the prefixed ones on a --with-jemalloc-prefix=je_ build.

static void *gojem_mallocx(size_t size, int flags) { return je_mallocx(size, flags); }
static void *gojem_calloc(size_t n, size_t size) { return je_calloc(n, size); }
static void *gojem_rallocx(void *ptr, size_t size, int flags) { return je_rallocx(ptr, size, flags); }
static size_t gojem_xallocx(void *ptr, size_t size, size_t extra, int flags) { return je_xallocx(ptr, size, extra, flags); }
static void gojem_sdallocx(void *ptr, size_t size, int flags) { je_sdallocx(ptr, size, flags); }
static size_t gojem_nallocx(size_t size, int flags) { return je_nallocx(size, flags); }
static size_t gojem_usable_size(void *ptr) { return je_malloc_usable_size(ptr); }

static int gojem_mallctl(const char *name, void *oldp, size_t *oldlenp, void *newp, size_t newlen) {
	return je_mallctl(name, oldp, oldlenp, newp, newlen);
}
static int gojem_mallctlnametomib(const char *name, size_t *mibp, size_t *miblenp) {
	return je_mallctlnametomib(name, mibp, miblenp);
}
static int gojem_mallctlbymib(const size_t *mib, size_t miblen, void *oldp, size_t *oldlenp, void *newp, size_t newlen) {
	return je_mallctlbymib(mib, miblen, oldp, oldlenp, newp, newlen);
}

typedef struct {
	char   *buf;
	size_t  len;
	size_t  cap;
} gojem_sink;

static void gojem_write_cb(void *opaque, const char *s) {
	gojem_sink *sink = opaque;
	size_t n = strlen(s);
	if (sink->len + n + 1 > sink->cap) {
		size_t cap = sink->cap ? sink->cap : 4096;
		while (cap < sink->len + n + 1) {
			cap *= 2;
		}
		char *buf = realloc(sink->buf, cap);
		if (buf == NULL) {
			return;
		}
		sink->buf = buf;
		sink->cap = cap;
	}
	memcpy(sink->buf + sink->len, s, n);
	sink->len += n;
	sink->buf[sink->len] = 0;
}

static gojem_sink gojem_stats_print(const char *opts) {
	gojem_sink sink = {0};
	je_malloc_stats_print(gojem_write_cb, &sink, opts);
	return sink;
}
*/
import "C"

import (
	"unsafe"
)

// Linked reports whether jemalloc is linked into the binary.
const Linked = true

func newDefaultNative() Native {
	return cgoNative{}
}

// cgoNative calls into the linked jemalloc library.
//
// Names and MIBs are passed to C without copying. Neither contains Go
// pointers, which keeps the calls within the cgo pointer passing rules.
type cgoNative struct{}

var _ Native = cgoNative{}

func cname(name string) *C.char {
	return (*C.char)(unsafe.Pointer(unsafe.StringData(name)))
}

func (cgoNative) Mallocx(size uintptr, flags int32) unsafe.Pointer {
	return C.gojem_mallocx(C.size_t(size), C.int(flags))
}

func (cgoNative) Calloc(n, size uintptr) unsafe.Pointer {
	return C.gojem_calloc(C.size_t(n), C.size_t(size))
}

func (cgoNative) Rallocx(ptr unsafe.Pointer, size uintptr, flags int32) unsafe.Pointer {
	return C.gojem_rallocx(ptr, C.size_t(size), C.int(flags))
}

func (cgoNative) Xallocx(ptr unsafe.Pointer, size, extra uintptr, flags int32) uintptr {
	return uintptr(C.gojem_xallocx(ptr, C.size_t(size), C.size_t(extra), C.int(flags)))
}

func (cgoNative) Sdallocx(ptr unsafe.Pointer, size uintptr, flags int32) {
	C.gojem_sdallocx(ptr, C.size_t(size), C.int(flags))
}

func (cgoNative) Nallocx(size uintptr, flags int32) uintptr {
	return uintptr(C.gojem_nallocx(C.size_t(size), C.int(flags)))
}

func (cgoNative) UsableSize(ptr unsafe.Pointer) uintptr {
	return uintptr(C.gojem_usable_size(ptr))
}

func (cgoNative) Mallctl(name string, oldp unsafe.Pointer, oldlenp *uintptr, newp unsafe.Pointer, newlen uintptr) int32 {
	return int32(C.gojem_mallctl(
		cname(name),
		oldp,
		(*C.size_t)(unsafe.Pointer(oldlenp)),
		newp,
		C.size_t(newlen),
	))
}

func (cgoNative) MallctlNameToMIB(name string, mib []uintptr, miblenp *uintptr) int32 {
	return int32(C.gojem_mallctlnametomib(
		cname(name),
		(*C.size_t)(unsafe.Pointer(unsafe.SliceData(mib))),
		(*C.size_t)(unsafe.Pointer(miblenp)),
	))
}

func (cgoNative) MallctlByMIB(mib []uintptr, oldp unsafe.Pointer, oldlenp *uintptr, newp unsafe.Pointer, newlen uintptr) int32 {
	return int32(C.gojem_mallctlbymib(
		(*C.size_t)(unsafe.Pointer(unsafe.SliceData(mib))),
		C.size_t(len(mib)),
		oldp,
		(*C.size_t)(unsafe.Pointer(oldlenp)),
		newp,
		C.size_t(newlen),
	))
}

func (cgoNative) StatsPrint(opts string) string {
	copts := C.CString(opts)
	defer C.free(unsafe.Pointer(copts))

	sink := C.gojem_stats_print(copts)
	if sink.buf == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(sink.buf))
	return C.GoStringN(sink.buf, C.int(sink.len))
}
