// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package framing

import (
	"github.com/wirefmt/wire/buffer"
	"github.com/wirefmt/wire/valueio"
	"github.com/wirefmt/wire/wireutil"
)

// BinaryInt32Ref is a reference cell bound to a single 4-byte slot in a
// Buffer, used by the binary encoding. Every operation goes through the
// buffer's atomic word primitives, never through any caching or pointer
// machinery of this package's own: two wires bound to the same buffer
// always observe each other's writes.
type BinaryInt32Ref struct {
	buf buffer.Buffer
	pos int
}

var _ valueio.Int32Ref = (*BinaryInt32Ref)(nil)

// NewBinaryInt32Ref appends a new 4-byte cell initialized to v and returns
// a handle bound to it.
func NewBinaryInt32Ref(buf buffer.Buffer, v int32) *BinaryInt32Ref {
	pos := buf.Append(wireutil.MarshalUint32(nil, uint32(v)))
	return &BinaryInt32Ref{buf: buf, pos: pos}
}

// OpenBinaryInt32Ref binds a handle to an existing 4-byte cell at pos.
func OpenBinaryInt32Ref(buf buffer.Buffer, pos int) *BinaryInt32Ref {
	return &BinaryInt32Ref{buf: buf, pos: pos}
}

func (r *BinaryInt32Ref) Get() int32 {
	raw, err := r.buf.ReadAt(r.pos, 4)
	if err != nil {
		panic(err)
	}
	return int32(wireutil.UnmarshalUint32(raw))
}

func (r *BinaryInt32Ref) Set(v int32) {
	if err := r.buf.WriteAt(r.pos, wireutil.MarshalUint32(nil, uint32(v))); err != nil {
		panic(err)
	}
}

func (r *BinaryInt32Ref) CompareAndSwap(old, new int32) bool {
	return r.buf.CompareAndSwapUint32(r.pos, uint32(old), uint32(new))
}

func (r *BinaryInt32Ref) AddAndGet(delta int32) int32 {
	return int32(r.buf.AddUint32(r.pos, uint32(delta)))
}

// BinaryInt64Ref is the 8-byte sibling of BinaryInt32Ref.
type BinaryInt64Ref struct {
	buf buffer.Buffer
	pos int
}

var _ valueio.Int64Ref = (*BinaryInt64Ref)(nil)

// NewBinaryInt64Ref appends a new 8-byte cell initialized to v.
func NewBinaryInt64Ref(buf buffer.Buffer, v int64) *BinaryInt64Ref {
	pos := buf.Append(wireutil.MarshalUint64(nil, uint64(v)))
	return &BinaryInt64Ref{buf: buf, pos: pos}
}

// OpenBinaryInt64Ref binds a handle to an existing 8-byte cell at pos.
func OpenBinaryInt64Ref(buf buffer.Buffer, pos int) *BinaryInt64Ref {
	return &BinaryInt64Ref{buf: buf, pos: pos}
}

func (r *BinaryInt64Ref) Get() int64 {
	raw, err := r.buf.ReadAt(r.pos, 8)
	if err != nil {
		panic(err)
	}
	return int64(wireutil.UnmarshalUint64(raw))
}

func (r *BinaryInt64Ref) Set(v int64) {
	if err := r.buf.WriteAt(r.pos, wireutil.MarshalUint64(nil, uint64(v))); err != nil {
		panic(err)
	}
}

func (r *BinaryInt64Ref) CompareAndSwap(old, new int64) bool {
	return r.buf.CompareAndSwapUint64(r.pos, uint64(old), uint64(new))
}

func (r *BinaryInt64Ref) AddAndGet(delta int64) int64 {
	return int64(r.buf.AddUint64(r.pos, uint64(delta)))
}

// BinaryInt64ArrayRef binds a handle to a contiguous run of 8-byte cells,
// each individually addressable for CAS.
type BinaryInt64ArrayRef struct {
	buf buffer.Buffer
	pos int
	n   int
}

var _ valueio.Int64ArrayRef = (*BinaryInt64ArrayRef)(nil)

// NewBinaryInt64ArrayRef appends len(v) consecutive 8-byte cells.
func NewBinaryInt64ArrayRef(buf buffer.Buffer, v []int64) *BinaryInt64ArrayRef {
	raw := make([]byte, 0, 8*len(v))
	for _, x := range v {
		raw = wireutil.MarshalUint64(raw, uint64(x))
	}
	pos := buf.Append(raw)
	return &BinaryInt64ArrayRef{buf: buf, pos: pos, n: len(v)}
}

// OpenBinaryInt64ArrayRef binds a handle to n existing 8-byte cells
// starting at pos.
func OpenBinaryInt64ArrayRef(buf buffer.Buffer, pos, n int) *BinaryInt64ArrayRef {
	return &BinaryInt64ArrayRef{buf: buf, pos: pos, n: n}
}

func (r *BinaryInt64ArrayRef) Len() int { return r.n }

func (r *BinaryInt64ArrayRef) slot(i int) int {
	if i < 0 || i >= r.n {
		panic("framing: reference cell index out of range")
	}
	return r.pos + i*8
}

func (r *BinaryInt64ArrayRef) Get(i int) int64 {
	raw, err := r.buf.ReadAt(r.slot(i), 8)
	if err != nil {
		panic(err)
	}
	return int64(wireutil.UnmarshalUint64(raw))
}

func (r *BinaryInt64ArrayRef) Set(i int, v int64) {
	if err := r.buf.WriteAt(r.slot(i), wireutil.MarshalUint64(nil, uint64(v))); err != nil {
		panic(err)
	}
}

func (r *BinaryInt64ArrayRef) CompareAndSwap(i int, old, new int64) bool {
	return r.buf.CompareAndSwapUint64(r.slot(i), uint64(old), uint64(new))
}
