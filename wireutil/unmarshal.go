// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wireutil

import "encoding/binary"

// ---- little-endian scalar unmarshal helpers ----

// UnmarshalUint64 reads a little-endian uint64 from src.
func UnmarshalUint64(src []byte) uint64 {
	return binary.LittleEndian.Uint64(src)
}

// UnmarshalUint32 reads a little-endian uint32 from src.
func UnmarshalUint32(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src[:4])
}

// UnmarshalUint16 reads a little-endian uint16 from src.
func UnmarshalUint16(src []byte) uint16 {
	return binary.LittleEndian.Uint16(src[:2])
}

// UnmarshalUint8 reads a single byte from src.
func UnmarshalUint8(src []byte) uint8 {
	return src[0]
}

// UnmarshalBool reads a single boolean byte from src.
func UnmarshalBool(src []byte) bool {
	return src[0] == 1
}

// ReadWord reads a 32-bit little-endian word (used for document headers and
// reference cells) from buf.
func ReadWord(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// ExpandSlice grows or shrinks src to exactly size elements, as the
// reflective marshaller does when reallocating a destination sequence or
// map field to match the number of items actually present on the wire.
func ExpandSlice[T any](src []T, size int) []T {
	if len(src) < size {
		return make([]T, size)
	}
	return src[:size]
}
