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

// recordingOut is a minimal ValueOut spy used to test the marshaller's
// field walk in isolation from any concrete encoding (text/binary get
// their own round-trip tests against real wires).
type recordingOut struct {
	events []string
}

var _ valueio.ValueOut = (*recordingOut)(nil)

func (r *recordingOut) emit(s string) { r.events = append(r.events, s) }

func (r *recordingOut) Bool(v bool)          { r.emit("bool") }
func (r *recordingOut) Int8(v int8)          { r.emit("i8") }
func (r *recordingOut) Int16(v int16)        { r.emit("i16") }
func (r *recordingOut) Int32(v int32)        { r.emit("i32") }
func (r *recordingOut) Int64(v int64)        { r.emit("i64") }
func (r *recordingOut) Uint8(v uint8)        { r.emit("u8") }
func (r *recordingOut) Uint16(v uint16)      { r.emit("u16") }
func (r *recordingOut) Uint32(v uint32)      { r.emit("u32") }
func (r *recordingOut) Uint64(v uint64)      { r.emit("u64") }
func (r *recordingOut) Float32(v float32)    { r.emit("f32") }
func (r *recordingOut) Float64(v float64)    { r.emit("f64") }
func (r *recordingOut) Text(v string)             { r.emit("text:" + v) }
func (r *recordingOut) Bytes(v []byte)            { r.emit("bytes") }
func (r *recordingOut) LocalTime(v time.Time)     {}
func (r *recordingOut) LocalDate(v time.Time)     {}
func (r *recordingOut) LocalDateTime(v time.Time) {}
func (r *recordingOut) ZonedDateTime(v time.Time) {}
func (r *recordingOut) UUID(v uuid.UUID)          {}
func (r *recordingOut) TypeLiteral(s string)      {}
func (r *recordingOut) Null()                     { r.emit("null") }
func (r *recordingOut) TypePrefix(s string)        {}
func (r *recordingOut) Leaf()                      { r.emit("leaf") }

func (r *recordingOut) Sequence(fn func(items valueio.ValueOut) int) {
	r.emit("seq-start")
	fn(r)
	r.emit("seq-end")
}

func (r *recordingOut) Record(fn func(inner valueio.ValueOut)) {
	r.emit("rec-start")
	fn(r)
	r.emit("rec-end")
}

func (r *recordingOut) Field(name string, fn func(v valueio.ValueOut)) {
	r.emit("field:" + name)
	fn(r)
}

func (r *recordingOut) Map(fn func(entries valueio.ValueOut)) {
	r.emit("map-start")
	fn(r)
	r.emit("map-end")
}

func (r *recordingOut) Object(v any)                                     { r.emit("object") }
func (r *recordingOut) CompressedBlob(codec string, fn func(w valueio.ValueOut)) {
	fn(r)
}
func (r *recordingOut) Int32Reference(initial int32) valueio.Int32Ref           { return nil }
func (r *recordingOut) Int64Reference(initial int64) valueio.Int64Ref           { return nil }
func (r *recordingOut) Int64ArrayReference(initial []int64) valueio.Int64ArrayRef { return nil }

type innerRecord struct {
	Value int32
}

type testRecord struct {
	Name     string `wire:"NAME,leaf"`
	Count    int32
	Children []innerRecord
}

func TestMarshalFieldOrderAndLeaf(t *testing.T) {
	m := reflectmars.New(nil, nil)
	out := &recordingOut{}
	rec := testRecord{Name: "hi", Count: 3, Children: []innerRecord{{Value: 1}, {Value: 2}}}
	if err := m.Marshal(out, &rec); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := []string{
		"rec-start",
		"field:NAME", "leaf", "text:hi",
		"field:Count", "i32",
		"field:Children", "seq-start", "rec-start", "field:Value", "i32", "rec-end", "rec-start", "field:Value", "i32", "rec-end", "seq-end",
		"rec-end",
	}
	if len(out.events) != len(want) {
		t.Fatalf("events = %v\nwant   %v", out.events, want)
	}
	for i := range want {
		if out.events[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, out.events[i], want[i])
		}
	}
}
