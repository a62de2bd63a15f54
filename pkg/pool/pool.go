// Object pools for reducing GC pressure in script emission hot paths
//
// Point-heavy structures emit hundreds of thousands of coordinate lines
// per script; pooling the line buffers keeps emission allocation-free.
//
// Usage:
//
//	buf := pool.GetLineBuffer()
//	defer pool.PutLineBuffer(buf)
//	// build the line in buf...
//
// Copyright (C) 2026  Ahmes Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package pool

import (
	"strconv"
	"sync"
)

// LineBuffer is a reusable byte buffer for building one output line.
type LineBuffer struct {
	buf []byte
}

var lineBufferPool = sync.Pool{
	New: func() any {
		return &LineBuffer{
			buf: make([]byte, 0, 64), // Typical point line size
		}
	},
}

// GetLineBuffer gets a line buffer from the pool
func GetLineBuffer() *LineBuffer {
	b := lineBufferPool.Get().(*LineBuffer)
	b.buf = b.buf[:0] // Reset length but keep capacity
	return b
}

// PutLineBuffer returns a line buffer to the pool
func PutLineBuffer(b *LineBuffer) {
	if b == nil {
		return
	}
	// Don't pool oversized buffers (> 4KB)
	if cap(b.buf) > 4096 {
		return
	}
	lineBufferPool.Put(b)
}

// Bytes returns the buffer's byte slice
func (b *LineBuffer) Bytes() []byte {
	return b.buf
}

// Write appends bytes to the buffer
func (b *LineBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte appends a single byte
func (b *LineBuffer) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// WriteString appends a string
func (b *LineBuffer) WriteString(s string) (int, error) {
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// AppendFloat appends v in the shortest decimal form that round-trips,
// without exponent notation.
func (b *LineBuffer) AppendFloat(v float64) {
	b.buf = strconv.AppendFloat(b.buf, v, 'f', -1, 64)
}

// Len returns the buffer length
func (b *LineBuffer) Len() int {
	return len(b.buf)
}

// Reset clears the buffer
func (b *LineBuffer) Reset() {
	b.buf = b.buf[:0]
}
