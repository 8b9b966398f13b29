// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"errors"
	"io"
)

// minRead is the smallest read ReadFrom issues.
const minRead = 512

var errNegativeRead = errors.New("jemalloc: reader returned negative count from Read")

// Buffer is a bytes.Buffer-like byte buffer whose storage is native memory.
// It implements io.Writer, io.WriterTo, io.Reader, io.ReaderFrom and
// io.ByteReader.
//
// Call Free when done with the buffer; until then the memory is not
// returned, whatever the garbage collector does with the Buffer.
type Buffer struct {
	alloc *Allocator
	buf   []byte // contents are buf[off:]
	off   int
}

// NewBuffer returns an empty Buffer backed by alloc. A nil alloc selects
// the default native allocator.
func NewBuffer(alloc *Allocator) *Buffer {
	if alloc == nil {
		alloc = New(nil)
	}
	return &Buffer{alloc: alloc}
}

// Grow makes room for at least n more bytes without another allocation.
func (b *Buffer) Grow(n int) {
	if n < 0 {
		panic("jemalloc: Buffer.Grow: negative count")
	}
	if cap(b.buf)-len(b.buf) >= n {
		return
	}
	// Slide the unread bytes down when that makes enough room.
	if unread := len(b.buf) - b.off; b.off > 0 && cap(b.buf)-unread >= n {
		copy(b.buf, b.buf[b.off:])
		b.buf = b.buf[:unread]
		b.off = 0
		return
	}
	b.buf = GrowSlice(b.alloc, b.buf, n)
}

// Write implements io.Writer. The error is always nil.
func (b *Buffer) Write(p []byte) (n int, err error) {
	b.Grow(len(p))
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte appends c to the buffer.
func (b *Buffer) WriteByte(c byte) error {
	b.Grow(1)
	b.buf = append(b.buf, c)
	return nil
}

// WriteString appends s to the buffer.
func (b *Buffer) WriteString(s string) (n int, err error) {
	b.Grow(len(s))
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// WriteTo implements io.WriterTo: it writes the unread bytes to w until
// the buffer is drained or w fails.
func (b *Buffer) WriteTo(w io.Writer) (n int64, err error) {
	if b.Len() == 0 {
		return 0, nil
	}
	m, err := w.Write(b.buf[b.off:])
	if m > b.Len() {
		panic("jemalloc: Buffer.WriteTo: invalid Write count")
	}
	b.off += m
	n = int64(m)
	if err != nil {
		return n, err
	}
	if b.Len() != 0 {
		return n, io.ErrShortWrite
	}
	b.Reset()
	return n, nil
}

// Read implements io.Reader.
func (b *Buffer) Read(p []byte) (n int, err error) {
	if b.Len() == 0 {
		b.Reset()
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n = copy(p, b.buf[b.off:])
	b.off += n
	return n, nil
}

// ReadByte implements io.ByteReader.
func (b *Buffer) ReadByte() (byte, error) {
	if b.Len() == 0 {
		b.Reset()
		return 0, io.EOF
	}
	c := b.buf[b.off]
	b.off++
	return c, nil
}

// ReadFrom implements io.ReaderFrom: it reads from r until EOF, growing
// the buffer as needed. io.EOF is not returned.
func (b *Buffer) ReadFrom(r io.Reader) (n int64, err error) {
	for {
		b.Grow(minRead)
		m, e := r.Read(b.buf[len(b.buf):cap(b.buf)])
		if m < 0 {
			panic(errNegativeRead)
		}
		b.buf = b.buf[:len(b.buf)+m]
		n += int64(m)
		if e == io.EOF {
			return n, nil
		}
		if e != nil {
			return n, e
		}
	}
}

// Next returns a copy of the next n unread bytes, or of all of them if
// there are fewer, and advances the buffer past them.
func (b *Buffer) Next(n int) []byte {
	n = max(min(n, b.Len()), 0)
	out := make([]byte, n)
	copy(out, b.buf[b.off:])
	b.off += n
	return out
}

// Bytes returns the unread bytes. The slice aliases native memory and is
// only valid until the next modification of the buffer.
func (b *Buffer) Bytes() []byte {
	if b.Len() == 0 {
		return []byte{}
	}
	return b.buf[b.off:]
}

// String returns a copy of the unread bytes as a string.
func (b *Buffer) String() string {
	return string(b.buf[b.off:])
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.buf) - b.off
}

// Cap returns the capacity of the native storage.
func (b *Buffer) Cap() int {
	return cap(b.buf)
}

// Reset empties the buffer, keeping its storage.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
}

// Truncate discards all but the first n unread bytes.
// It panics if n is negative or greater than the length of the buffer.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > b.Len() {
		panic("jemalloc: Buffer.Truncate: out of range")
	}
	if n == 0 {
		b.Reset()
		return
	}
	b.buf = b.buf[:b.off+n]
}

// Free returns the storage to the native allocator and empties the buffer.
// The buffer can be used again afterwards.
func (b *Buffer) Free() {
	FreeSlice(b.alloc, b.buf)
	b.buf = nil
	b.off = 0
}
