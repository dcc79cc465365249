// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wirebinary

import (
	"encoding/binary"

	"github.com/wirefmt/wire/wireutil"
)

func appendVarint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

func readVarint(data []byte, pos int) (uint64, int, error) {
	v, n := binary.Uvarint(data[pos:])
	if n <= 0 {
		return 0, 0, wireutil.ErrTruncation
	}
	return v, n, nil
}
