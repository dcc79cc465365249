// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

//go:build unix

package buffer

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mapped is a Buffer backed by a memory-mapped file. Its header and
// reference-cell words are updated through the platform's atomic
// primitives (see CompareAndSwapUint32), so two wires bound to the same
// mapping - in the same process or across processes - observe each
// other's writes without going through any of this package's own
// synchronization.
type Mapped struct {
	data []byte // the full mapping
	len  int    // logical length written so far
}

var _ Buffer = (*Mapped)(nil)

// OpenMapped maps size bytes of f starting at offset 0, creating/growing
// the file as needed, and returns a Mapped buffer over it.
func OpenMapped(f *os.File, size int) (*Mapped, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("buffer: stat mapped file: %w", err)
	}
	if info.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			return nil, fmt.Errorf("buffer: grow mapped file: %w", err)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("buffer: mmap: %w", err)
	}

	return &Mapped{data: data}, nil
}

func (m *Mapped) Len() int { return m.len }
func (m *Mapped) Cap() int { return len(m.data) }

func (m *Mapped) Bytes() []byte { return m.data[:m.len] }

func (m *Mapped) ReadAt(pos, n int) ([]byte, error) {
	if err := checkRange(len(m.data), pos, n); err != nil {
		return nil, err
	}
	return m.data[pos : pos+n], nil
}

func (m *Mapped) WriteAt(pos int, p []byte) error {
	if err := checkRange(len(m.data), pos, len(p)); err != nil {
		return err
	}
	copy(m.data[pos:], p)
	return nil
}

func (m *Mapped) Append(p []byte) int {
	pos := m.len
	if pos+len(p) > len(m.data) {
		panic("buffer: mapped buffer exhausted, remap with a larger size")
	}
	copy(m.data[pos:], p)
	m.len += len(p)
	return pos
}

func (m *Mapped) Reserve(n int) int {
	pos := m.len
	if pos+n > len(m.data) {
		panic("buffer: mapped buffer exhausted, remap with a larger size")
	}
	clear(m.data[pos : pos+n])
	m.len += n
	return pos
}

func (m *Mapped) Truncate(n int) {
	m.len = n
}

func (m *Mapped) word32(pos int) *uint32 {
	return (*uint32)(unsafe.Pointer(&m.data[pos]))
}

func (m *Mapped) word64(pos int) *uint64 {
	return (*uint64)(unsafe.Pointer(&m.data[pos]))
}

func (m *Mapped) CompareAndSwapUint32(pos int, old, new uint32) bool {
	return atomic.CompareAndSwapUint32(m.word32(pos), old, new)
}

func (m *Mapped) AddUint32(pos int, delta uint32) uint32 {
	return atomic.AddUint32(m.word32(pos), delta)
}

func (m *Mapped) CompareAndSwapUint64(pos int, old, new uint64) bool {
	return atomic.CompareAndSwapUint64(m.word64(pos), old, new)
}

func (m *Mapped) AddUint64(pos int, delta uint64) uint64 {
	return atomic.AddUint64(m.word64(pos), delta)
}

// Sync flushes the mapping to its backing file, making updates visible to
// any other process that has the same file mapped.
func (m *Mapped) Sync() error {
	return unix.Msync(m.data, unix.MS_SYNC)
}

// Close unmaps the buffer. The buffer must not be used afterward.
func (m *Mapped) Close() error {
	return unix.Munmap(m.data)
}
