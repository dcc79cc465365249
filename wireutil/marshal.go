// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wireutil

import "encoding/binary"

// ---- little-endian scalar marshal helpers ----
//
// These back both the binary encoding's fixed-width scalar codes and the
// reference-cell / document-header offset arithmetic in package framing;
// every multi-byte quantity on the wire is little-endian.

// MarshalUint64 appends a little-endian uint64 to dst.
func MarshalUint64(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

// MarshalUint32 appends a little-endian uint32 to dst.
func MarshalUint32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// MarshalUint16 appends a little-endian uint16 to dst.
func MarshalUint16(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}

// MarshalUint8 appends a single byte to dst.
func MarshalUint8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

// MarshalBool appends a single boolean byte to dst.
func MarshalBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}
	return append(dst, 0)
}

// MarshalWord marshals a 32-bit word (used for document headers) to dst.
func MarshalWord(dst []byte, word uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, word)
}

// UpdateWord overwrites the 4 bytes at dst[0:4] with a little-endian word,
// used to back-patch a document header or reference-cell slot in place.
func UpdateWord(dst []byte, word uint32) {
	binary.LittleEndian.PutUint32(dst, word)
}
