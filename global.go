// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wire

import "github.com/wirefmt/wire/buffer"

// globalText and globalBinary are the process-wide default Wires, built
// against wtypes.DefaultCache() and strategy.Default() the same way the
// teacher exposes a GetGlobalDynSsz() singleton for callers that do not
// need per-instance options.
var (
	globalText   = New(TypeText)
	globalBinary = New(TypeBinary)
)

// Marshal encodes v with the process-wide text Wire and returns the
// resulting bytes, document-framed as a single DATA document.
func Marshal(v any) ([]byte, error) {
	buf := buffer.NewGrowable(64)
	if _, err := globalText.Marshal(buf, v, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a single document written by Marshal into dst.
func Unmarshal(data []byte, dst any) error {
	buf := buffer.NewGrowableFrom(data)
	return globalText.Unmarshal(buf, 0, dst)
}

// MarshalBinary encodes v with the process-wide binary Wire.
func MarshalBinary(v any) ([]byte, error) {
	buf := buffer.NewGrowable(64)
	if _, err := globalBinary.Marshal(buf, v, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a single document written by MarshalBinary.
func UnmarshalBinary(data []byte, dst any) error {
	buf := buffer.NewGrowableFrom(data)
	return globalBinary.Unmarshal(buf, 0, dst)
}
