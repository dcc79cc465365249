// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

// Package valueio defines the uniform writer and reader contracts shared by
// every concrete wire encoding (text, binary, and any future dialect). A
// producer drives a ValueOut to emit typed scalars and named fields; a
// consumer drives the dual ValueIn to pull them back. Nothing in this
// package knows about bytes, indentation, or lead-byte codes - that is each
// encoding's job.
package valueio

import (
	"time"

	"github.com/google/uuid"
)

// ValueOut is the uniform writer surface every encoding implements. Each
// scalar emitter takes a Go value of its own wire width, so it is total
// over its domain and reports no errors.
//
// Composite emitters (Sequence, Record, Map) hand the caller a nested
// ValueOut/sequence-item callback so emission can recurse freely; the
// encoding is responsible for stacking whatever indentation or framing
// state the nesting requires.
type ValueOut interface {
	// Bool writes a boolean scalar.
	Bool(v bool)
	// Int8, Int16, Int32, Int64 write signed integers of the given width.
	Int8(v int8)
	Int16(v int16)
	Int32(v int32)
	Int64(v int64)
	// Uint8, Uint16, Uint32, Uint64 write unsigned integers of the given width.
	Uint8(v uint8)
	Uint16(v uint16)
	Uint32(v uint32)
	Uint64(v uint64)
	// Float32, Float64 write floating point scalars.
	Float32(v float32)
	Float64(v float64)
	// Text writes a UTF-8 string scalar.
	Text(v string)
	// Bytes writes an opaque byte sequence scalar.
	Bytes(v []byte)
	// Time writes one of the four time-of-day/date/date-time/zoned-date-time
	// variants described in the data model; the concrete Go type selects
	// which wire representation is used.
	LocalTime(v time.Time)
	LocalDate(v time.Time)
	LocalDateTime(v time.Time)
	ZonedDateTime(v time.Time)
	// UUID writes a UUID scalar.
	UUID(v uuid.UUID)
	// TypeLiteral writes a bare type-name reference (a "value is itself a
	// class reference" scalar, distinct from a type-prefixed value).
	TypeLiteral(name string)
	// Null writes the encoding's null sentinel.
	Null()

	// TypePrefix attaches a class tag to whatever scalar/composite value is
	// written next. Calling it twice before a value is written replaces the
	// pending tag.
	TypePrefix(name string)

	// Leaf hints that the next composite should be inlined on one line
	// when the encoding can do so without breaking legibility. Encodings
	// that have no concept of line breaks may ignore the hint.
	Leaf()

	// Sequence opens an ordered composite and calls fn once per item
	// through the returned item writer; fn controls how many items are
	// written by how many times it invokes the item callback it is given.
	Sequence(fn func(items ValueOut) int)
	// Record opens a named-field composite; fn receives a nested ValueOut
	// which the caller drives field-by-field, typically via Field.
	Record(fn func(inner ValueOut))
	// Field writes one named field of a record as (name, value); value is
	// produced by invoking fn against the returned per-field ValueOut.
	Field(name string, fn func(v ValueOut))
	// Map opens an unordered string-keyed composite, encoded the same way
	// a record is: each entry becomes a (key, value) field pair.
	Map(fn func(entries ValueOut))

	// Object performs polymorphic dispatch: it inspects the runtime type
	// of v and selects the narrowest scalar emitter above; any other value
	// is marshalled as a record through package reflectmars. A value that
	// is not a record (a slice, map or array, for example) is written as the
	// null sentinel; the strategy table is not consulted.
	Object(v any)

	// CompressedBlob wraps fn's output in a compressed sub-blob tagged
	// with codec. The codec name is opaque to the wire; resolving it is
	// the compression hook's job (see package compress).
	CompressedBlob(codec string, fn func(w ValueOut))

	// Int32Reference reserves a fixed-width slot for a later in-place
	// update and returns a handle bound to its buffer position.
	Int32Reference(initial int32) Int32Ref
	Int64Reference(initial int64) Int64Ref
	Int64ArrayReference(initial []int64) Int64ArrayRef
}

// ValueIn is the dual of ValueOut: a consumer pulls scalars and composites
// in whatever order the producer wrote them, or - for records - by name,
// letting the encoding skip past fields it does not recognize.
type ValueIn interface {
	Bool() (bool, error)
	Int8() (int8, error)
	Int16() (int16, error)
	Int32() (int32, error)
	Int64() (int64, error)
	Uint8() (uint8, error)
	Uint16() (uint16, error)
	Uint32() (uint32, error)
	Uint64() (uint64, error)
	Float32() (float32, error)
	Float64() (float64, error)
	Text() (string, error)
	Bytes() ([]byte, error)
	LocalTime() (time.Time, error)
	LocalDate() (time.Time, error)
	LocalDateTime() (time.Time, error)
	ZonedDateTime() (time.Time, error)
	UUID() (uuid.UUID, error)
	TypeLiteral() (string, error)

	// IsNull reports whether the next value is the null sentinel, without
	// consuming it. Callers that accept null call Null to consume it.
	IsNull() bool
	Null() error

	// TypePrefix returns the class tag attached to the next value, or ""
	// if the value is untyped. It does not consume the tagged value.
	TypePrefix() (string, bool)

	// ReadLength returns the byte span the next value occupies without
	// advancing the cursor, so the reflective marshaller can skip unknown
	// fields precisely.
	ReadLength() (int, error)
	// Skip advances the cursor past the next value without decoding it.
	Skip() error

	// Sequence pulls items until the encoding-specific terminator. The
	// caller drives a hasNext-style loop: each call to fn must consume
	// exactly one item from the returned ValueIn; Sequence returns once
	// fn returns false or the terminator is reached.
	Sequence(fn func(items ValueIn) bool) error
	// Record pulls a named-field composite; fn receives a nested ValueIn
	// reading from the same cursor. No read limit is set at the record's
	// end: a pull past its last field reads the closing marker and fails
	// with whatever error that pull reports for it, not with truncation.
	Record(fn func(inner ValueIn) error) error
	// Map pulls an unordered string-keyed composite the same way a
	// record is pulled, with fn invoked once per (key, value) pair.
	Map(fn func(key string, v ValueIn) error) error

	// NextField consumes the name of the next field in a record/map and
	// returns it, leaving that field's value as the next thing to pull, or
	// returns "" and false when the terminator is next.
	NextField() (string, bool)

	// Object performs polymorphic dispatch the mirror of ValueOut.Object:
	// it peeks the next value and routes to the narrowest puller;
	// composites come back as map[string]any and []any, and the strategy
	// table is not consulted.
	Object() (any, error)

	CompressedBlob(fn func(r ValueIn) error) error

	Int32Reference() (Int32Ref, error)
	Int64Reference() (Int64Ref, error)
	Int64ArrayReference() (Int64ArrayRef, error)
}

// Int32Ref, Int64Ref, and Int64ArrayRef are the reference-cell handles
// described in the data model (§3, §4.8): a fixed-width slot bound to a
// position in the buffer that remains addressable after the enclosing
// document is sealed, supporting atomic compare-and-swap and fetch-and-add
// through whatever buffer backs the wire.
type Int32Ref interface {
	Get() int32
	Set(v int32)
	CompareAndSwap(old, new int32) bool
	AddAndGet(delta int32) int32
}

type Int64Ref interface {
	Get() int64
	Set(v int64)
	CompareAndSwap(old, new int64) bool
	AddAndGet(delta int64) int64
}

type Int64ArrayRef interface {
	Len() int
	Get(i int) int64
	Set(i int, v int64)
	CompareAndSwap(i int, old, new int64) bool
}
