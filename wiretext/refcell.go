// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wiretext

import (
	"strconv"
	"sync"

	"github.com/wirefmt/wire/buffer"
)

// readPadded and writePadded convert between a space-padded decimal literal
// at a fixed buffer position and an int64, preserving the literal's width
// so an update never shifts any byte after it (§4.8).
func readPadded(buf buffer.Buffer, pos int) int64 {
	raw, err := buf.ReadAt(pos, refWidth)
	if err != nil {
		return 0
	}
	end := 0
	for end < len(raw) && raw[end] != ' ' {
		end++
	}
	v, _ := strconv.ParseInt(string(raw[:end]), 10, 64)
	return v
}

func writePadded(buf buffer.Buffer, pos int, v int64) {
	s := strconv.FormatInt(v, 10)
	b := make([]byte, refWidth)
	copy(b, s)
	for i := len(s); i < refWidth; i++ {
		b[i] = ' '
	}
	buf.WriteAt(pos, b)
}

// Int32Ref and Int64Ref implement valueio.Int32Ref/Int64Ref over a text
// document's backing buffer. The text form favors readability over the
// binary encoding's lock-free atomics (framing.BinaryInt32Ref): updates
// are serialized through a mutex rather than a single machine-word CAS,
// since the slot holds a fixed-width, space-padded decimal literal, not a
// raw word.
type Int32Ref struct {
	mu  sync.Mutex
	buf buffer.Buffer
	pos int
}

func (r *Int32Ref) Get() int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int32(readPadded(r.buf, r.pos))
}

func (r *Int32Ref) Set(v int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	writePadded(r.buf, r.pos, int64(v))
}

func (r *Int32Ref) CompareAndSwap(old, new int32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int32(readPadded(r.buf, r.pos)) != old {
		return false
	}
	writePadded(r.buf, r.pos, int64(new))
	return true
}

func (r *Int32Ref) AddAndGet(delta int32) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := int32(readPadded(r.buf, r.pos)) + delta
	writePadded(r.buf, r.pos, int64(v))
	return v
}

type Int64Ref struct {
	mu  sync.Mutex
	buf buffer.Buffer
	pos int
}

func (r *Int64Ref) Get() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return readPadded(r.buf, r.pos)
}

func (r *Int64Ref) Set(v int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	writePadded(r.buf, r.pos, v)
}

func (r *Int64Ref) CompareAndSwap(old, new int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if readPadded(r.buf, r.pos) != old {
		return false
	}
	writePadded(r.buf, r.pos, new)
	return true
}

func (r *Int64Ref) AddAndGet(delta int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := readPadded(r.buf, r.pos) + delta
	writePadded(r.buf, r.pos, v)
	return v
}

// Int64ArrayRef implements valueio.Int64ArrayRef over a fixed list of
// positions, one per element, each independently space-padded.
type Int64ArrayRef struct {
	mu        sync.Mutex
	buf       buffer.Buffer
	positions []int
}

func (r *Int64ArrayRef) Len() int { return len(r.positions) }

func (r *Int64ArrayRef) Get(i int) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return readPadded(r.buf, r.positions[i])
}

func (r *Int64ArrayRef) Set(i int, v int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	writePadded(r.buf, r.positions[i], v)
}

func (r *Int64ArrayRef) CompareAndSwap(i int, old, new int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if readPadded(r.buf, r.positions[i]) != old {
		return false
	}
	writePadded(r.buf, r.positions[i], new)
	return true
}
