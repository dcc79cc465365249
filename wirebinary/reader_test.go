// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0

package wirebinary_test

import (
	"errors"
	"testing"

	"github.com/wirefmt/wire/buffer"
	"github.com/wirefmt/wire/valueio"
	"github.com/wirefmt/wire/wirebinary"
	"github.com/wirefmt/wire/wireutil"
)

// TestNarrowPullRangeCheck is scenario S2: an int64 value written under a
// field must be pulled back as int16 successfully when it fits, and fail
// with wireutil.ErrRangeViolation - cursor unchanged - when it does not.
// Cursor restoration is checked behaviorally: a failed pull must leave
// the stored value fully intact for a correct subsequent pull to recover
// it, rather than consuming part of it.
func TestNarrowPullRangeCheck(t *testing.T) {
	buf := buffer.NewGrowable(64)
	w := wirebinary.NewWriter(buf, false)
	w.Record(func(inner valueio.ValueOut) {
		inner.Field("Fits", func(v valueio.ValueOut) { v.Int64(1234) })
		inner.Field("TooBig", func(v valueio.ValueOut) { v.Int64(9223372036854775807) })
	})

	r := wirebinary.NewReader(buf, 0, false)
	if err := r.Record(func(inner valueio.ValueIn) error {
		for {
			name, ok := inner.NextField()
			if !ok {
				return nil
			}
			switch name {
			case "Fits":
				v, err := inner.Int16()
				if err != nil {
					t.Fatalf("Int16() on a value that fits: %v", err)
				}
				if v != 1234 {
					t.Errorf("Int16() = %d, want 1234", v)
				}
			case "TooBig":
				if _, err := inner.Int16(); !errors.Is(err, wireutil.ErrRangeViolation) {
					t.Fatalf("Int16() on an out-of-range value: err = %v, want ErrRangeViolation", err)
				}
				// a failed pull must not have consumed any of the stored
				// value; re-reading at the correct width must still see
				// the exact original bytes.
				v, err := inner.Int64()
				if err != nil {
					t.Fatalf("Int64() re-read after failed Int16() pull: %v", err)
				}
				if v != 9223372036854775807 {
					t.Errorf("Int64() re-read = %d, want 9223372036854775807 (cursor moved on failed pull)", v)
				}
			default:
				if err := inner.Skip(); err != nil {
					return err
				}
			}
		}
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
}

func TestUnsignedPullRejectsNegative(t *testing.T) {
	buf := buffer.NewGrowable(32)
	w := wirebinary.NewWriter(buf, false)
	w.Int32(-1)

	r := wirebinary.NewReader(buf, 0, false)
	if _, err := r.Uint32(); !errors.Is(err, wireutil.ErrRangeViolation) {
		t.Fatalf("Uint32() on a negative stored value: err = %v, want ErrRangeViolation", err)
	}
}
