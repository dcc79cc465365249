// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wire

import "github.com/wirefmt/wire/buffer"

// MarshalJSON encodes v through the TypeJSON thin profile (§6
// [SUPPLEMENTED] #2) and returns the resulting bytes, for callers that
// want a drop-in JSON-compatible rendering without constructing a Wire or
// a buffer themselves.
func MarshalJSON(v any, opts ...Option) ([]byte, error) {
	w := New(TypeJSON, opts...)
	buf := buffer.NewGrowable(64)
	if _, err := w.Marshal(buf, v, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes data, produced by MarshalJSON or by any producer
// of the same always-quoted text grammar, into dst.
func UnmarshalJSON(data []byte, dst any, opts ...Option) error {
	w := New(TypeJSON, opts...)
	buf := buffer.NewGrowableFrom(data)
	return w.Unmarshal(buf, 0, dst)
}
