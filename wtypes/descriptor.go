// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

// Package wtypes caches the reflective descriptors the marshaller (package
// reflectmars) drives a record through: an ordered list of field
// accessors, computed once per Go type and reused for every value of that
// type.
package wtypes

import (
	"reflect"

	"github.com/wirefmt/wire/wtags"
)

// Kind classifies a field's declared accessor path (§4.5): bool, each
// integer width, each float, text, nested-record, array, collection, map,
// reference cell, or any-object.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindText
	KindBytes
	KindLocalTime
	KindLocalDate
	KindLocalDateTime
	KindZonedDateTime
	KindUUID
	KindRecord       // nested record, delegates to reflective marshaller
	KindArray        // fixed-size Go array
	KindCollection   // slice/set, strategy-table "list/set"
	KindMap          // map, strategy-table "map"
	KindInt32Ref     // i32 reference cell
	KindInt64Ref     // i64 reference cell
	KindInt64ArrayRef
	KindAnyObject // unconstrained interface{}/any field
)

// TypeFlag records structural facts about a type discovered once at
// descriptor-build time, so the marshaller never has to re-derive them.
type TypeFlag uint8

const (
	// FlagPointer marks a field declared as a pointer; nil is read/written
	// through the null scalar rather than dereferenced.
	FlagPointer TypeFlag = 1 << iota
	// FlagLeaf marks a field descriptor whose accessor knows its payload
	// is small enough to hint the encoding's "leaf" inline form.
	FlagLeaf
)

// TypeDescriptor is the cached, per-Go-type layout the reflective
// marshaller drives a value through.
type TypeDescriptor struct {
	Type      reflect.Type // runtime type this descriptor was built for
	Kind      Kind
	Flags     TypeFlag
	Container *ContainerDescriptor // populated when Kind == KindRecord
	Elem      *TypeDescriptor      // element descriptor for Array/Collection/Map value
	Key       *TypeDescriptor      // key descriptor for Map
}

// ContainerDescriptor is the ordered field list of a record type.
type ContainerDescriptor struct {
	// Fields is in serialization order: declaration order with embedded
	// base fields first, transient/static fields excluded.
	Fields []FieldDescriptor
}

// FieldDescriptor is one record field's accessor path.
type FieldDescriptor struct {
	Name       string
	Type       *TypeDescriptor
	FieldIndex []int // reflect.Value.FieldByIndex path, supports embedding
	// NumericID is the field's `wire-id` tag value, used instead of Name
	// when the wire is configured with the numeric_id option (§6).
	NumericID *uint32
	// SizeHints is the field's parsed `wire-size` tag alternatives,
	// bounding a KindArray/KindCollection field's length (§4.6). Empty
	// when the field carries no `wire-size` tag.
	SizeHints []wtags.SizeHint
}

// IsLeaf reports whether this field descriptor's accessor knows its
// payload is small enough to hint the encoding's inline "leaf" form.
func (f FieldDescriptor) IsLeaf() bool { return f.Type.Flags&FlagLeaf != 0 }
