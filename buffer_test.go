// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferBasicOperations(t *testing.T) {
	alloc, native := newTestAllocator(t)
	buf := NewBuffer(alloc)
	defer buf.Free()

	// Test initial state
	require.Equal(t, 0, buf.Len())
	require.Equal(t, 0, buf.Cap())
	require.Equal(t, "", buf.String())
	require.Equal(t, []byte{}, buf.Bytes())
	require.Equal(t, 0, native.Live())

	n, err := buf.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", buf.String())
	require.Equal(t, 1, native.Live())

	require.NoError(t, buf.WriteByte(' '))
	n, err = buf.WriteString("world")
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, 11, buf.Len())
	require.Equal(t, []byte("hello world"), buf.Bytes())
}

func TestBufferReadOperations(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	buf := NewBuffer(alloc)
	defer buf.Free()

	_, err := buf.WriteString("hello world")
	require.NoError(t, err)

	p := make([]byte, 5)
	n, err := buf.Read(p)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(p))
	require.Equal(t, " world", buf.String())

	c, err := buf.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(' '), c)

	require.Equal(t, []byte("wor"), buf.Next(3))
	require.Equal(t, []byte("ld"), buf.Next(10))
	require.Equal(t, []byte{}, buf.Next(1))

	n, err = buf.Read(p)
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
	_, err = buf.ReadByte()
	require.ErrorIs(t, err, io.EOF)
}

func TestBufferReuseAfterRead(t *testing.T) {
	alloc, native := newTestAllocator(t)
	buf := NewBuffer(alloc)
	defer buf.Free()

	buf.Grow(64)
	capacity := buf.Cap()
	for i := 0; i < 100; i++ {
		_, _ = buf.WriteString("0123456789")
		require.Equal(t, []byte("0123456789"), buf.Next(10))
	}
	// Drained space is reused instead of growing the buffer.
	require.Equal(t, capacity, buf.Cap())
	require.Equal(t, 1, native.Live())
}

func TestBufferTruncateReset(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	buf := NewBuffer(alloc)
	defer buf.Free()

	_, _ = buf.WriteString("hello world")
	buf.Truncate(5)
	require.Equal(t, "hello", buf.String())
	require.Panics(t, func() { buf.Truncate(6) })
	require.Panics(t, func() { buf.Truncate(-1) })

	capacity := buf.Cap()
	buf.Reset()
	require.Equal(t, 0, buf.Len())
	require.Equal(t, capacity, buf.Cap())
}

func TestBufferGrowth(t *testing.T) {
	alloc, native := newTestAllocator(t)
	buf := NewBuffer(alloc)

	data := strings.Repeat("jemalloc", 10000)
	for i := 0; i < len(data); i += 1000 {
		_, err := buf.WriteString(data[i:min(i+1000, len(data))])
		require.NoError(t, err)
	}
	require.Equal(t, data, buf.String())
	require.Equal(t, 1, native.Live())

	buf.Free()
	require.Equal(t, 0, native.Live())
	require.Equal(t, 0, buf.Len())

	// A freed buffer can be written again.
	_, _ = buf.WriteString("again")
	require.Equal(t, "again", buf.String())
	buf.Free()
}

func TestBufferWriteTo(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	buf := NewBuffer(alloc)
	defer buf.Free()

	_, _ = buf.WriteString("hello world")
	var out bytes.Buffer
	n, err := buf.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(11), n)
	require.Equal(t, "hello world", out.String())
	require.Equal(t, 0, buf.Len())

	n, err = buf.WriteTo(&out)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestBufferReadFrom(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	buf := NewBuffer(alloc)
	defer buf.Free()

	data := strings.Repeat("x", 100000)
	n, err := buf.ReadFrom(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), n)
	require.Equal(t, data, buf.String())

	// Appends to existing content
	n, err = buf.ReadFrom(strings.NewReader("!"))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Equal(t, len(data)+1, buf.Len())
}

func TestBufferReadFromWithError(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	buf := NewBuffer(alloc)
	defer buf.Free()

	failure := errors.New("read failure")
	r := io.MultiReader(strings.NewReader("partial"), &errReader{err: failure})
	n, err := buf.ReadFrom(r)
	require.ErrorIs(t, err, failure)
	require.Equal(t, int64(7), n)
	require.Equal(t, "partial", buf.String())
}

func TestBufferIoCompatibility(t *testing.T) {
	alloc, _ := newTestAllocator(t)
	buf := NewBuffer(alloc)
	defer buf.Free()

	var (
		_ io.Writer     = buf
		_ io.WriterTo   = buf
		_ io.Reader     = buf
		_ io.ReaderFrom = buf
		_ io.ByteReader = buf
	)

	_, err := io.Copy(buf, strings.NewReader("copied"))
	require.NoError(t, err)
	var out strings.Builder
	_, err = io.Copy(&out, buf)
	require.NoError(t, err)
	require.Equal(t, "copied", out.String())
}

type errReader struct {
	err error
}

func (r *errReader) Read([]byte) (int, error) {
	return 0, r.err
}
