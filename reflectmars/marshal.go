// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

// Package reflectmars is the reflective marshaller (§4.5): given a record
// type it walks a cached wtypes.TypeDescriptor, driving a valueio.ValueOut
// or valueio.ValueIn field-by-field. Values that are neither primitive
// scalars nor records - collections, maps, enums, throwables,
// externalizables - are handed to the strategy table (package strategy).
package reflectmars

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/wirefmt/wire/strategy"
	"github.com/wirefmt/wire/valueio"
	"github.com/wirefmt/wire/wireutil"
	"github.com/wirefmt/wire/wtags"
	"github.com/wirefmt/wire/wtypes"
)

// Marshaller drives ValueOut/ValueIn from a record type's cached
// descriptor, mirroring the teacher's ReflectionCtx: one small struct
// holding the caches/registries a marshal or unmarshal pass needs, built
// once and reused across every call.
type Marshaller struct {
	types           *wtypes.Cache
	strategies      *strategy.Registry
	numericFieldIDs bool
	specValues      *wtags.SpecValues
}

// New creates a Marshaller over the given descriptor cache and strategy
// table. Passing nil for either uses the process-wide default (see
// wtypes.DefaultCache and strategy.Default).
func New(types *wtypes.Cache, strategies *strategy.Registry) *Marshaller {
	if types == nil {
		types = wtypes.DefaultCache()
	}
	if strategies == nil {
		strategies = strategy.Default()
	}
	return &Marshaller{types: types, strategies: strategies}
}

// SetNumericFieldIDs toggles the `numeric_id` wire option (§6): when
// enabled, a field declared with a `wire-id` struct tag is written/read
// under its decimal numeric ID instead of its name, the binary encoding's
// field-less mode's named sibling. Fields without a `wire-id` tag keep
// using their name regardless of this setting.
func (m *Marshaller) SetNumericFieldIDs(enabled bool) { m.numericFieldIDs = enabled }

// SetSpecValues binds the named values a field's `wire-size` tag
// expression resolves against (§4.6), mirroring the teacher's dynamic
// ssz-size spec-value map. A nil resolver (the default) means every
// `wire-size` alternative that is itself an expression rather than a
// bare literal simply fails to resolve, leaving the field unbounded.
func (m *Marshaller) SetSpecValues(sv *wtags.SpecValues) { m.specValues = sv }

// boundedSize resolves the first alternative of hints that Resolve
// succeeds on, or returns (0, false) when hints is empty or every
// alternative is unresolvable (a dynamic/unbounded field).
func (m *Marshaller) boundedSize(hints []wtags.SizeHint) (uint64, bool) {
	for _, h := range hints {
		if n, ok, err := h.Resolve(m.specValues); err == nil && ok {
			return n, true
		}
	}
	return 0, false
}

// Marshal writes v - which must be a record (struct) value or pointer to
// one - through w as a single Record composite.
func (m *Marshaller) Marshal(w valueio.ValueOut, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			w.Null()
			return nil
		}
		rv = rv.Elem()
	}
	desc, err := m.types.Describe(rv.Type())
	if err != nil {
		return fmt.Errorf("reflectmars: %w", err)
	}
	if desc.Kind != wtypes.KindRecord {
		return fmt.Errorf("reflectmars: Marshal requires a record type, got %s", rv.Type())
	}

	var writeErr error
	w.Record(func(inner valueio.ValueOut) {
		if err := m.writeRecordFields(inner, desc.Container, rv); err != nil {
			writeErr = err
		}
	})
	return writeErr
}

func (m *Marshaller) writeRecordFields(w valueio.ValueOut, cd *wtypes.ContainerDescriptor, rv reflect.Value) error {
	for _, fd := range cd.Fields {
		fd := fd
		fv := rv.FieldByIndex(fd.FieldIndex)
		if len(fd.SizeHints) > 0 && (fv.Kind() == reflect.Slice || fv.Kind() == reflect.Array) {
			if max, ok := m.boundedSize(fd.SizeHints); ok && uint64(fv.Len()) > max {
				return fmt.Errorf("field %s: %w: length %d exceeds wire-size bound %d", fd.Name, wireutil.ErrRangeViolation, fv.Len(), max)
			}
		}
		name := fd.Name
		if m.numericFieldIDs && fd.NumericID != nil {
			name = strconv.FormatUint(uint64(*fd.NumericID), 10)
		}
		var fieldErr error
		w.Field(name, func(fw valueio.ValueOut) {
			if fd.IsLeaf() {
				fw.Leaf()
			}
			if err := m.writeValue(fw, fd.Type, fv); err != nil {
				fieldErr = err
			}
		})
		if fieldErr != nil {
			return fmt.Errorf("field %s: %w", fd.Name, fieldErr)
		}
	}
	return nil
}

// writeValue emits fv through w according to desc, handling the pointer
// unwrap / null policy and the strategy-table escape hatch (enum,
// throwable, externalizable) ahead of the plain structural dispatch.
func (m *Marshaller) writeValue(w valueio.ValueOut, desc *wtypes.TypeDescriptor, fv reflect.Value) error {
	if desc.Flags&wtypes.FlagPointer != 0 {
		if fv.IsNil() {
			w.Null()
			return nil
		}
		fv = fv.Elem()
	}

	if e, ok := strategy.AsEnum(fv); ok {
		w.Text(e.EnumText())
		return nil
	}

	switch desc.Kind {
	case wtypes.KindBool:
		w.Bool(fv.Bool())
	case wtypes.KindInt8:
		w.Int8(int8(fv.Int()))
	case wtypes.KindInt16:
		w.Int16(int16(fv.Int()))
	case wtypes.KindInt32:
		w.Int32(int32(fv.Int()))
	case wtypes.KindInt64:
		w.Int64(fv.Int())
	case wtypes.KindUint8:
		w.Uint8(uint8(fv.Uint()))
	case wtypes.KindUint16:
		w.Uint16(uint16(fv.Uint()))
	case wtypes.KindUint32:
		w.Uint32(uint32(fv.Uint()))
	case wtypes.KindUint64:
		w.Uint64(fv.Uint())
	case wtypes.KindFloat32:
		w.Float32(float32(fv.Float()))
	case wtypes.KindFloat64:
		w.Float64(fv.Float())
	case wtypes.KindText:
		w.Text(fv.String())
	case wtypes.KindBytes:
		w.Bytes(bytesOf(fv))
	case wtypes.KindUUID:
		w.UUID(fv.Interface().(uuid.UUID))
	case wtypes.KindLocalTime:
		w.LocalTime(fv.Interface().(time.Time))
	case wtypes.KindLocalDate:
		w.LocalDate(fv.Interface().(time.Time))
	case wtypes.KindLocalDateTime:
		w.LocalDateTime(fv.Interface().(time.Time))
	case wtypes.KindZonedDateTime:
		w.ZonedDateTime(fv.Interface().(time.Time))
	case wtypes.KindRecord:
		var err error
		w.Record(func(inner valueio.ValueOut) {
			err = m.writeRecordFields(inner, desc.Container, fv)
		})
		return err
	case wtypes.KindArray, wtypes.KindCollection:
		return m.writeSequence(w, desc, fv)
	case wtypes.KindMap:
		return m.writeMap(w, desc, fv)
	case wtypes.KindAnyObject:
		if fv.IsValid() && !isNilIface(fv) {
			w.Object(fv.Interface())
		} else {
			w.Null()
		}
	default:
		return fmt.Errorf("reflectmars: no writer for kind %v (type %s)", desc.Kind, desc.Type)
	}
	return nil
}

func (m *Marshaller) writeSequence(w valueio.ValueOut, desc *wtypes.TypeDescriptor, fv reflect.Value) error {
	var seqErr error
	w.Sequence(func(items valueio.ValueOut) int {
		n := fv.Len()
		for i := 0; i < n; i++ {
			if err := m.writeValue(items, desc.Elem, fv.Index(i)); err != nil {
				seqErr = fmt.Errorf("index %d: %w", i, err)
				return i
			}
		}
		return n
	})
	return seqErr
}

func (m *Marshaller) writeMap(w valueio.ValueOut, desc *wtypes.TypeDescriptor, fv reflect.Value) error {
	var mapErr error
	w.Map(func(entries valueio.ValueOut) {
		keys := fv.MapKeys()
		for _, k := range keys {
			keyStr := fmt.Sprint(k.Interface())
			val := fv.MapIndex(k)
			entries.Field(keyStr, func(ew valueio.ValueOut) {
				if err := m.writeValue(ew, desc.Elem, val); err != nil && mapErr == nil {
					mapErr = fmt.Errorf("key %s: %w", keyStr, err)
				}
			})
		}
	})
	return mapErr
}

func bytesOf(fv reflect.Value) []byte {
	if fv.Kind() == reflect.Array {
		b := make([]byte, fv.Len())
		reflect.Copy(reflect.ValueOf(b), fv)
		return b
	}
	return fv.Bytes()
}

func isNilIface(fv reflect.Value) bool {
	switch fv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return fv.IsNil()
	}
	return false
}
