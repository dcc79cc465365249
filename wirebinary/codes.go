// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

// Package wirebinary implements the compact tagged binary encoding (§4.4):
// a single lead byte classifies each element, followed by whatever fixed
// or varint-prefixed payload that code requires. Grounded on the
// teacher's byte-level marshal/unmarshal helpers (package wireutil) for
// every fixed-width quantity, and on the lead-byte dispatch idiom used
// throughout other_examples' wire-protocol files for the tag table
// itself (the teacher's own format is fixed-offset SSZ and has no
// lead-byte concept to draw from directly).
package wirebinary

// code is the single-byte tag preceding every element on the wire.
type code byte

const (
	codeNull code = iota
	codeBoolFalse
	codeBoolTrue
	codeInt8
	codeInt16
	codeInt32
	codeInt64
	codeUint8
	codeUint16
	codeUint32
	codeUint64
	codeFloat32
	codeFloat64
	codeText
	codeBytes
	codeLocalTime
	codeLocalDate
	codeLocalDateTime
	codeZonedDateTime
	codeUUID
	codeTypeLiteral
	codeTypePrefix
	codeFieldName
	codeSequenceStart
	codeSequenceEnd
	codeRecordStart
	codeRecordEnd
	codeCompressedBlob
	codeRefInt32
	codeRefInt64
	codeRefInt64Array
	codeLeafHint
)
