// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wirebinary

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/wirefmt/wire/buffer"
	"github.com/wirefmt/wire/compress"
	"github.com/wirefmt/wire/framing"
	"github.com/wirefmt/wire/reflectmars"
	"github.com/wirefmt/wire/valueio"
	"github.com/wirefmt/wire/wireutil"
)

// Writer is the binary encoding's ValueOut. FieldLess selects the
// `binary-fieldless` wire-type profile (§6): field name codes are
// omitted from the stream and fields are matched positionally by the
// order the descriptor declares them, rather than by name.
type Writer struct {
	buf        buffer.Buffer
	fieldLess  bool
	leafNext   bool
	typeNext   string
	hasType    bool
	marshaller *reflectmars.Marshaller
}

var _ valueio.ValueOut = (*Writer)(nil)

// NewWriter creates a binary encoding writer appending to buf.
func NewWriter(buf buffer.Buffer, fieldLess bool) *Writer {
	return &Writer{buf: buf, fieldLess: fieldLess}
}

func (w *Writer) emitCode(c code) { w.buf.Append([]byte{byte(c)}) }

func (w *Writer) emitTag() {
	if w.hasType {
		w.hasType = false
		w.emitCode(codeTypePrefix)
		w.emitText(w.typeNext)
		w.typeNext = ""
	}
}

func (w *Writer) emitLeaf() {
	if w.leafNext {
		w.leafNext = false
		w.emitCode(codeLeafHint)
	}
}

func (w *Writer) emitText(s string) {
	b := []byte(s)
	prefixed := appendVarint(nil, uint64(len(b)))
	w.buf.Append(prefixed)
	w.buf.Append(b)
}

func (w *Writer) Bool(v bool) {
	w.emitTag()
	if v {
		w.emitCode(codeBoolTrue)
	} else {
		w.emitCode(codeBoolFalse)
	}
}

func (w *Writer) Int8(v int8) {
	w.emitTag()
	w.emitCode(codeInt8)
	w.buf.Append([]byte{byte(v)})
}

func (w *Writer) Int16(v int16) {
	w.emitTag()
	w.emitCode(codeInt16)
	w.buf.Append(wireutil.MarshalUint16(nil, uint16(v)))
}

func (w *Writer) Int32(v int32) {
	w.emitTag()
	w.emitCode(codeInt32)
	w.buf.Append(wireutil.MarshalUint32(nil, uint32(v)))
}

func (w *Writer) Int64(v int64) {
	w.emitTag()
	w.emitCode(codeInt64)
	w.buf.Append(wireutil.MarshalUint64(nil, uint64(v)))
}

func (w *Writer) Uint8(v uint8) {
	w.emitTag()
	w.emitCode(codeUint8)
	w.buf.Append([]byte{v})
}

func (w *Writer) Uint16(v uint16) {
	w.emitTag()
	w.emitCode(codeUint16)
	w.buf.Append(wireutil.MarshalUint16(nil, v))
}

func (w *Writer) Uint32(v uint32) {
	w.emitTag()
	w.emitCode(codeUint32)
	w.buf.Append(wireutil.MarshalUint32(nil, v))
}

func (w *Writer) Uint64(v uint64) {
	w.emitTag()
	w.emitCode(codeUint64)
	w.buf.Append(wireutil.MarshalUint64(nil, v))
}

func (w *Writer) Float32(v float32) {
	w.emitTag()
	w.emitCode(codeFloat32)
	w.buf.Append(wireutil.MarshalUint32(nil, math.Float32bits(v)))
}

func (w *Writer) Float64(v float64) {
	w.emitTag()
	w.emitCode(codeFloat64)
	w.buf.Append(wireutil.MarshalUint64(nil, math.Float64bits(v)))
}

func (w *Writer) Text(v string) {
	w.emitTag()
	w.emitCode(codeText)
	w.emitText(v)
}

func (w *Writer) Bytes(v []byte) {
	w.emitTag()
	w.emitCode(codeBytes)
	w.buf.Append(appendVarint(nil, uint64(len(v))))
	w.buf.Append(v)
}

func (w *Writer) LocalTime(v time.Time) {
	w.emitTag()
	w.emitCode(codeLocalTime)
	w.emitText(v.Format("15:04:05"))
}

func (w *Writer) LocalDate(v time.Time) {
	w.emitTag()
	w.emitCode(codeLocalDate)
	w.emitText(v.Format("2006-01-02"))
}

func (w *Writer) LocalDateTime(v time.Time) {
	w.emitTag()
	w.emitCode(codeLocalDateTime)
	w.emitText(v.Format("2006-01-02T15:04:05"))
}

func (w *Writer) ZonedDateTime(v time.Time) {
	w.emitTag()
	w.emitCode(codeZonedDateTime)
	w.emitText(v.Format(time.RFC3339))
}

func (w *Writer) UUID(v uuid.UUID) {
	w.emitTag()
	w.emitCode(codeUUID)
	b, _ := v.MarshalBinary()
	w.buf.Append(b)
}

func (w *Writer) TypeLiteral(name string) {
	w.emitCode(codeTypeLiteral)
	w.emitText(name)
}

func (w *Writer) Null() {
	w.emitCode(codeNull)
}

func (w *Writer) TypePrefix(name string) {
	w.hasType = true
	w.typeNext = name
}

func (w *Writer) Leaf() { w.leafNext = true }

func (w *Writer) Sequence(fn func(items valueio.ValueOut) int) {
	w.emitTag()
	w.emitLeaf()
	w.emitCode(codeSequenceStart)
	fn(w)
	w.emitCode(codeSequenceEnd)
}

func (w *Writer) Record(fn func(inner valueio.ValueOut)) {
	w.emitTag()
	w.emitLeaf()
	w.emitCode(codeRecordStart)
	fn(w)
	w.emitCode(codeRecordEnd)
}

func (w *Writer) Map(fn func(entries valueio.ValueOut)) {
	w.Record(func(inner valueio.ValueOut) { fn(inner) })
}

func (w *Writer) Field(name string, fn func(v valueio.ValueOut)) {
	if !w.fieldLess {
		w.emitCode(codeFieldName)
		w.emitText(name)
	}
	fn(w)
}

func (w *Writer) Object(v any) {
	if v == nil {
		w.Null()
		return
	}
	switch val := v.(type) {
	case bool:
		w.Bool(val)
	case int8:
		w.Int8(val)
	case int16:
		w.Int16(val)
	case int32:
		w.Int32(val)
	case int64:
		w.Int64(val)
	case int:
		w.Int64(int64(val))
	case uint8:
		w.Uint8(val)
	case uint16:
		w.Uint16(val)
	case uint32:
		w.Uint32(val)
	case uint64:
		w.Uint64(val)
	case float32:
		w.Float32(val)
	case float64:
		w.Float64(val)
	case string:
		w.Text(val)
	case []byte:
		w.Bytes(val)
	case time.Time:
		w.ZonedDateTime(val)
	case uuid.UUID:
		w.UUID(val)
	default:
		if w.marshaller == nil {
			w.marshaller = reflectmars.New(nil, nil)
		}
		if err := w.marshaller.Marshal(w, v); err != nil {
			w.Null()
		}
	}
}

func (w *Writer) CompressedBlob(codec string, fn func(w valueio.ValueOut)) {
	staging := buffer.NewGrowable(64)
	inner := NewWriter(staging, w.fieldLess)
	fn(inner)
	payload := staging.Bytes()
	if c, err := compress.Lookup(codec); err == nil {
		if packed, err := c.Compress(payload); err == nil {
			payload = packed
		}
	}
	w.emitCode(codeCompressedBlob)
	w.emitText(codec)
	w.buf.Append(appendVarint(nil, uint64(len(payload))))
	w.buf.Append(payload)
}

func (w *Writer) Int32Reference(initial int32) valueio.Int32Ref {
	w.emitCode(codeRefInt32)
	return framing.NewBinaryInt32Ref(w.buf, initial)
}

func (w *Writer) Int64Reference(initial int64) valueio.Int64Ref {
	w.emitCode(codeRefInt64)
	return framing.NewBinaryInt64Ref(w.buf, initial)
}

func (w *Writer) Int64ArrayReference(initial []int64) valueio.Int64ArrayRef {
	w.emitCode(codeRefInt64Array)
	w.buf.Append(appendVarint(nil, uint64(len(initial))))
	return framing.NewBinaryInt64ArrayRef(w.buf, initial)
}
