// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

// Package framing implements the size-prefixed document protocol that lets
// many independent records share one buffer (§3, §4.7, §6). Every document
// begins with a 4-byte little-endian header word: bit 31 marks the document
// not-yet-complete, bit 30 distinguishes meta from data documents, and the
// low 30 bits carry the payload length.
package framing

import "github.com/wirefmt/wire/wireutil"

const (
	// NotCompleteBit (bit 31) marks a document whose writer has not yet
	// finished; readers observing it must treat the document as absent.
	NotCompleteBit uint32 = 1 << 31
	// MetaDataBit (bit 30) distinguishes a META document (transparent to
	// DATA numbering) from a DATA document.
	MetaDataBit uint32 = 1 << 30
	// LengthMask covers the 30 length bits.
	LengthMask uint32 = MetaDataBit - 1

	// HeaderSize is the fixed width, in bytes, of every document header.
	HeaderSize = 4

	// notInitialized is the header word of a buffer position that has
	// never been written: no bits set at all.
	notInitialized uint32 = 0
)

// EndOfStreamWord is the well-known header value signalling end of
// stream: not-complete and meta-data both set, with a zero length (the
// spec's "length not yet known" encoding of META, repurposed as a
// terminator since a real META document is never left not-complete).
const EndOfStreamWord = NotCompleteBit | MetaDataBit

// Header is a parsed document header word.
type Header uint32

// ParseHeader reads the 4-byte little-endian header word at the start of
// buf.
func ParseHeader(buf []byte) Header {
	return Header(wireutil.UnmarshalUint32(buf))
}

// IsNotComplete reports whether the writer has not finished this document.
func (h Header) IsNotComplete() bool { return uint32(h)&NotCompleteBit != 0 }

// IsMeta reports whether this is a META document.
func (h Header) IsMeta() bool { return uint32(h)&MetaDataBit != 0 }

// IsData is the complement of IsMeta.
func (h Header) IsData() bool { return !h.IsMeta() }

// Length returns the payload length carried in the low 30 bits.
func (h Header) Length() uint32 { return uint32(h) & LengthMask }

// IsEndOfStream reports whether this header is the well-known end-of-stream
// marker (not-complete, meta, zero length).
func (h Header) IsEndOfStream() bool { return uint32(h) == EndOfStreamWord }

// placeholderWord is the header value written when a writing context is
// entered, before the payload length is known.
func placeholderWord(isMeta bool) uint32 {
	w := NotCompleteBit
	if isMeta {
		w |= MetaDataBit
	}
	return w
}

// finalWord is the header value written once a document is sealed.
func finalWord(isMeta bool, length uint32) uint32 {
	w := length & LengthMask
	if isMeta {
		w |= MetaDataBit
	}
	return w
}
