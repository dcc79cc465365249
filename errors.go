// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wire

import (
	"fmt"

	"github.com/wirefmt/wire/wireutil"
)

// Re-export the error kinds from wireutil so callers never need to import
// that package just to errors.Is against a wire failure.
var (
	ErrRangeViolation       = wireutil.ErrRangeViolation
	ErrTypeMismatch         = wireutil.ErrTypeMismatch
	ErrTruncation           = wireutil.ErrTruncation
	ErrUnterminatedRecord   = wireutil.ErrUnterminatedRecord
	ErrUnknownTypeTag       = wireutil.ErrUnknownTypeTag
	ErrPayloadTooLarge      = wireutil.ErrPayloadTooLarge
	ErrHeaderAcquireTimeout = wireutil.ErrHeaderAcquireTimeout
	ErrIOFailure            = wireutil.ErrIOFailure
)

// maxExcerpt bounds the diagnostic slice of bytes an OffsetError carries.
const maxExcerpt = 256

// OffsetError decorates one of the sentinel error kinds above with the byte
// offset at which it was detected and a short excerpt of the surrounding
// bytes, per §7. An error raised while reading nested fields does not
// corrupt the parent document's read cursor: the reading context always
// re-synchronizes to the document end on exit (see framing.ReadingContext).
type OffsetError struct {
	Kind    error
	Offset  int64
	Excerpt []byte
}

// NewOffsetError builds an OffsetError, clipping excerpt to maxExcerpt bytes
// centered as closely as possible on offset within the given buffer.
func NewOffsetError(kind error, offset int64, buf []byte) *OffsetError {
	start := 0
	if offset > maxExcerpt/2 {
		start = int(offset) - maxExcerpt/2
	}
	end := start + maxExcerpt
	if end > len(buf) {
		end = len(buf)
	}
	if start > end {
		start = end
	}
	excerpt := make([]byte, end-start)
	copy(excerpt, buf[start:end])

	return &OffsetError{Kind: kind, Offset: offset, Excerpt: excerpt}
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("%v at offset %d: %q", e.Kind, e.Offset, e.Excerpt)
}

func (e *OffsetError) Unwrap() error {
	return e.Kind
}
