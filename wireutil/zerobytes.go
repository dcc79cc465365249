// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wireutil

import "io"

var zeroBytes []byte
var spaceBytes []byte

func ZeroBytes() []byte {
	if len(zeroBytes) == 0 {
		zeroBytes = make([]byte, 1024)
	}
	return zeroBytes
}

func spaceFill() []byte {
	if len(spaceBytes) == 0 {
		spaceBytes = make([]byte, 1024)
		for i := range spaceBytes {
			spaceBytes[i] = ' '
		}
	}
	return spaceBytes
}

// AppendZeroPadding appends count zero bytes to buf.
func AppendZeroPadding(buf []byte, count int) []byte {
	fill := ZeroBytes()
	for count > 0 {
		toCopy := count
		if toCopy > len(fill) {
			toCopy = len(fill)
		}
		buf = append(buf, fill[:toCopy]...)
		count -= toCopy
	}
	return buf
}

// AppendZeroPaddingWriter streams count zero bytes to writer.
func AppendZeroPaddingWriter(writer io.Writer, count int) error {
	fill := ZeroBytes()
	for count > 0 {
		toCopy := count
		if toCopy > len(fill) {
			toCopy = len(fill)
		}
		if _, err := writer.Write(fill[:toCopy]); err != nil {
			return err
		}
		count -= toCopy
	}
	return nil
}

// AppendSpacePadding appends count ASCII space bytes to buf. The text
// encoding pads a fixed-width reference-cell numeric literal with spaces
// so that an in-place update never changes the document's length.
func AppendSpacePadding(buf []byte, count int) []byte {
	fill := spaceFill()
	for count > 0 {
		toCopy := count
		if toCopy > len(fill) {
			toCopy = len(fill)
		}
		buf = append(buf, fill[:toCopy]...)
		count -= toCopy
	}
	return buf
}
