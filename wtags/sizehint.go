// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wtags

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SizeHint is one comma-separated alternative of a field's `wire-size` tag:
// either a literal size or a dynamic expression to resolve against a
// SpecValues map, mirroring the teacher's SszSizeHint (ssz-size/dynssz-size).
type SizeHint struct {
	Size       uint64
	Dynamic    bool
	Expression string
}

// ParseSizeHints parses the `wire-size` tag on field, returning one
// SizeHint per comma-separated alternative. A bare integer is a literal
// size; anything else is kept as a govaluate expression to resolve later
// via SpecValues, because the reflective marshaller's sequence/array
// length check only needs the resolved bound at encode/decode time, not
// at descriptor-build time.
func ParseSizeHints(field *reflect.StructField) ([]SizeHint, error) {
	tag, ok := field.Tag.Lookup("wire-size")
	if !ok {
		return nil, nil
	}

	var hints []SizeHint
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "?" {
			hints = append(hints, SizeHint{Dynamic: true})
			continue
		}
		if n, err := strconv.ParseUint(part, 10, 32); err == nil {
			hints = append(hints, SizeHint{Size: n})
			continue
		}
		hints = append(hints, SizeHint{Expression: part})
	}
	return hints, nil
}

// Resolve returns the concrete bound for h: the literal Size if one was
// given, the expression evaluated against sv if one was given and sv
// resolves it, or (0, false) when neither applies (an unbounded/dynamic
// field).
func (h SizeHint) Resolve(sv *SpecValues) (uint64, bool, error) {
	if h.Dynamic {
		return 0, false, nil
	}
	if h.Expression == "" {
		return h.Size, true, nil
	}
	if sv == nil {
		return 0, false, nil
	}
	ok, value, err := sv.Resolve(h.Expression)
	if err != nil {
		return 0, false, fmt.Errorf("wtags: %w", err)
	}
	return value, ok, nil
}
