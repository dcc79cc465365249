// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package reflectmars_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wirefmt/wire/reflectmars"
	"github.com/wirefmt/wire/valueio"
)

// scalarField is one (name, pull) pair a scriptedIn plays back in order;
// only the pull kinds exercised by the tests below are implemented.
type scalarField struct {
	name string
	i32  *int32
}

// scriptedIn is a minimal ValueIn fake that plays back a fixed sequence
// of (name, int32) fields, mirroring the field-match loop described in
// §4.2: NextField peeks, the subsequent typed pull consumes.
type scriptedIn struct {
	fields []scalarField
	pos    int
}

var _ valueio.ValueIn = (*scriptedIn)(nil)

func (s *scriptedIn) NextField() (string, bool) {
	if s.pos >= len(s.fields) {
		return "", false
	}
	return s.fields[s.pos].name, true
}

func (s *scriptedIn) Int32() (int32, error) {
	v := *s.fields[s.pos].i32
	s.pos++
	return v, nil
}

func (s *scriptedIn) Skip() error {
	s.pos++
	return nil
}

func (s *scriptedIn) Record(fn func(inner valueio.ValueIn) error) error { return fn(s) }

func (s *scriptedIn) Bool() (bool, error)                      { panic("unused") }
func (s *scriptedIn) Int8() (int8, error)                      { panic("unused") }
func (s *scriptedIn) Int16() (int16, error)                    { panic("unused") }
func (s *scriptedIn) Int64() (int64, error)                    { panic("unused") }
func (s *scriptedIn) Uint8() (uint8, error)                    { panic("unused") }
func (s *scriptedIn) Uint16() (uint16, error)                  { panic("unused") }
func (s *scriptedIn) Uint32() (uint32, error)                  { panic("unused") }
func (s *scriptedIn) Uint64() (uint64, error)                  { panic("unused") }
func (s *scriptedIn) Float32() (float32, error)                { panic("unused") }
func (s *scriptedIn) Float64() (float64, error)                { panic("unused") }
func (s *scriptedIn) Text() (string, error)                    { panic("unused") }
func (s *scriptedIn) Bytes() ([]byte, error)                   { panic("unused") }
func (s *scriptedIn) LocalTime() (time.Time, error)            { panic("unused") }
func (s *scriptedIn) LocalDate() (time.Time, error)            { panic("unused") }
func (s *scriptedIn) LocalDateTime() (time.Time, error)        { panic("unused") }
func (s *scriptedIn) ZonedDateTime() (time.Time, error)        { panic("unused") }
func (s *scriptedIn) UUID() (uuid.UUID, error)                 { panic("unused") }
func (s *scriptedIn) TypeLiteral() (string, error)             { panic("unused") }
func (s *scriptedIn) IsNull() bool                             { return false }
func (s *scriptedIn) Null() error                              { return nil }
func (s *scriptedIn) TypePrefix() (string, bool)               { return "", false }
func (s *scriptedIn) ReadLength() (int, error)                 { return 0, nil }
func (s *scriptedIn) Sequence(fn func(items valueio.ValueIn) bool) error { return nil }
func (s *scriptedIn) Map(fn func(key string, v valueio.ValueIn) error) error { return nil }
func (s *scriptedIn) Object() (any, error)                     { return nil, nil }
func (s *scriptedIn) CompressedBlob(fn func(r valueio.ValueIn) error) error { return fn(s) }
func (s *scriptedIn) Int32Reference() (valueio.Int32Ref, error)         { return nil, nil }
func (s *scriptedIn) Int64Reference() (valueio.Int64Ref, error)         { return nil, nil }
func (s *scriptedIn) Int64ArrayReference() (valueio.Int64ArrayRef, error) { return nil, nil }

func i32p(v int32) *int32 { return &v }

type dtoV1 struct {
	One int32
}

type dtoV2 struct {
	One   int32
	Two   int32
	Three *int32
}

// TestForwardCompatibility is scenario S5: a writer that only knew about
// "one" is read into a record type with extra fields "two"/"three",
// which must come back at their Go zero values.
func TestForwardCompatibility(t *testing.T) {
	in := &scriptedIn{fields: []scalarField{{name: "One", i32: i32p(1)}}}
	m := reflectmars.New(nil, nil)

	var dst dtoV2
	if err := m.Unmarshal(in, &dst, true); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if dst.One != 1 {
		t.Errorf("One = %d, want 1", dst.One)
	}
	if dst.Two != 0 {
		t.Errorf("Two = %d, want 0", dst.Two)
	}
	if dst.Three != nil {
		t.Errorf("Three = %v, want nil", dst.Three)
	}
}

// TestBackwardCompatibility is scenario S6: a writer that wrote
// "one"/"two"/"three" is read into a record type that only declares
// "one"; the extra fields must be skipped without aborting the read.
func TestBackwardCompatibility(t *testing.T) {
	in := &scriptedIn{fields: []scalarField{
		{name: "One", i32: i32p(1)},
		{name: "Two", i32: i32p(2)},
		{name: "Three", i32: i32p(3)},
	}}
	m := reflectmars.New(nil, nil)

	var dst dtoV1
	if err := m.Unmarshal(in, &dst, true); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if dst.One != 1 {
		t.Errorf("One = %d, want 1", dst.One)
	}
	if in.pos != len(in.fields) {
		t.Errorf("reader consumed %d of %d fields, want all skipped/read", in.pos, len(in.fields))
	}
}

// TestMergeModeLeavesAbsentFieldsAlone exercises the non-overwrite branch:
// a field absent on the wire keeps whatever value the destination
// already held, rather than being reset to zero.
func TestMergeModeLeavesAbsentFieldsAlone(t *testing.T) {
	in := &scriptedIn{fields: []scalarField{{name: "One", i32: i32p(9)}}}
	m := reflectmars.New(nil, nil)

	dst := dtoV2{One: 1, Two: 42}
	if err := m.Unmarshal(in, &dst, false); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if dst.One != 9 {
		t.Errorf("One = %d, want 9", dst.One)
	}
	if dst.Two != 42 {
		t.Errorf("Two = %d, want 42 (left untouched in merge mode)", dst.Two)
	}
}
