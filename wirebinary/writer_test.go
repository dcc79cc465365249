// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wirebinary_test

import (
	"testing"

	"github.com/wirefmt/wire/buffer"
	"github.com/wirefmt/wire/valueio"
	"github.com/wirefmt/wire/wirebinary"
)

func TestScalarRoundTrip(t *testing.T) {
	buf := buffer.NewGrowable(64)
	w := wirebinary.NewWriter(buf, false)
	w.Record(func(inner valueio.ValueOut) {
		inner.Field("Name", func(v valueio.ValueOut) { v.Text("hello, world") })
		inner.Field("Count", func(v valueio.ValueOut) { v.Int32(-7) })
		inner.Field("Ratio", func(v valueio.ValueOut) { v.Float64(3.5) })
	})

	r := wirebinary.NewReader(buf, 0, false)
	var gotName string
	var gotCount int32
	var gotRatio float64
	if err := r.Record(func(inner valueio.ValueIn) error {
		for {
			name, ok := inner.NextField()
			if !ok {
				return nil
			}
			switch name {
			case "Name":
				s, err := inner.Text()
				if err != nil {
					return err
				}
				gotName = s
			case "Count":
				v, err := inner.Int32()
				if err != nil {
					return err
				}
				gotCount = v
			case "Ratio":
				v, err := inner.Float64()
				if err != nil {
					return err
				}
				gotRatio = v
			default:
				if err := inner.Skip(); err != nil {
					return err
				}
			}
		}
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if gotName != "hello, world" {
		t.Errorf("Name = %q", gotName)
	}
	if gotCount != -7 {
		t.Errorf("Count = %d", gotCount)
	}
	if gotRatio != 3.5 {
		t.Errorf("Ratio = %v", gotRatio)
	}
}

func TestFieldLessPositional(t *testing.T) {
	buf := buffer.NewGrowable(64)
	w := wirebinary.NewWriter(buf, true)
	w.Record(func(inner valueio.ValueOut) {
		inner.Field("Name", func(v valueio.ValueOut) { v.Text("a") })
		inner.Field("Count", func(v valueio.ValueOut) { v.Int32(9) })
	})

	r := wirebinary.NewReader(buf, 0, true)
	var vals []string
	if err := r.Record(func(inner valueio.ValueIn) error {
		for {
			_, ok := inner.NextField()
			if !ok {
				return nil
			}
			if err := inner.Skip(); err != nil {
				return err
			}
			vals = append(vals, "x")
		}
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(vals) != 2 {
		t.Errorf("got %d positional fields, want 2", len(vals))
	}
}

func TestSequenceRoundTrip(t *testing.T) {
	buf := buffer.NewGrowable(64)
	w := wirebinary.NewWriter(buf, false)
	w.Sequence(func(items valueio.ValueOut) int {
		items.Int64(1)
		items.Int64(2)
		items.Int64(3)
		return 3
	})

	r := wirebinary.NewReader(buf, 0, false)
	var got []int64
	if err := r.Sequence(func(items valueio.ValueIn) bool {
		v, err := items.Int64()
		if err != nil {
			t.Fatalf("Int64: %v", err)
		}
		got = append(got, v)
		return true
	}); err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("got %v", got)
	}
}

func TestReferenceCellRoundTrip(t *testing.T) {
	buf := buffer.NewGrowable(64)
	w := wirebinary.NewWriter(buf, false)
	ref := w.Int64Reference(10)
	if !ref.CompareAndSwap(10, 99) {
		t.Fatalf("CompareAndSwap failed")
	}

	r := wirebinary.NewReader(buf, 0, false)
	readRef, err := r.Int64Reference()
	if err != nil {
		t.Fatalf("Int64Reference: %v", err)
	}
	if got := readRef.Get(); got != 99 {
		t.Errorf("Get() = %d, want 99", got)
	}
}

func TestNullAndSkip(t *testing.T) {
	buf := buffer.NewGrowable(32)
	w := wirebinary.NewWriter(buf, false)
	w.Record(func(inner valueio.ValueOut) {
		inner.Field("Maybe", func(v valueio.ValueOut) { v.Null() })
		inner.Field("After", func(v valueio.ValueOut) { v.Bool(true) })
	})

	r := wirebinary.NewReader(buf, 0, false)
	var sawAfter bool
	if err := r.Record(func(inner valueio.ValueIn) error {
		for {
			name, ok := inner.NextField()
			if !ok {
				return nil
			}
			if name == "After" {
				v, err := inner.Bool()
				if err != nil {
					return err
				}
				sawAfter = v
				continue
			}
			if err := inner.Skip(); err != nil {
				return err
			}
		}
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !sawAfter {
		t.Errorf("After field not read correctly")
	}
}
