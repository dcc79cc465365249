// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wire

// WireType names one entry of the §6 wire-type registry: the set of
// encodings a Wire can be constructed for.
type WireType string

const (
	// TypeText is the YAML-dialect human-readable encoding (§4.3).
	TypeText WireType = "text"
	// TypeBinary is the compact tagged binary encoding (§4.4), field names
	// written as length-prefixed text.
	TypeBinary WireType = "binary"
	// TypeBinaryFieldLess is TypeBinary with field names omitted from the
	// stream; fields are matched positionally by declaration order.
	TypeBinaryFieldLess WireType = "binary-fieldless"
	// TypeCompressedBinary encodes each top-level document in the binary
	// encoding and compresses the whole payload with
	// Options.CompressionCodec when it is at least
	// Options.CompressionThreshold bytes long; smaller payloads are stored
	// as-is.
	TypeCompressedBinary WireType = "compressed-binary"
	// TypeRaw is the binary encoding with no document framing: the encoded
	// value is appended directly and decoded directly from the given
	// position.
	TypeRaw WireType = "raw"
	// TypeJSON is the text encoding with every string and field name
	// double-quoted and no document marker line (§6 [SUPPLEMENTED] #2).
	// Nulls and byte blobs keep their text-encoding forms (`!!null ""`,
	// `!binary ...`), so such values do not render as JSON.
	TypeJSON WireType = "json"
	// TypeCSV writes one flat record of scalar fields as a single
	// comma-joined line, bypassing the text encoding (§6 [SUPPLEMENTED] #2).
	TypeCSV WireType = "csv"
	// TypeReadAny sniffs the first non-whitespace byte of a document to
	// decide between TypeText and TypeBinary on read (§6 [SUPPLEMENTED] #1).
	TypeReadAny WireType = "read-any"
)
