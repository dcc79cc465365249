// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wirebinary

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/wirefmt/wire/buffer"
	"github.com/wirefmt/wire/compress"
	"github.com/wirefmt/wire/framing"
	"github.com/wirefmt/wire/valueio"
	"github.com/wirefmt/wire/wireutil"
)

// Reader is the binary encoding's ValueIn. It walks data by lead-byte code,
// the dual of Writer. FieldLess mirrors the writer's flag: when set, Field
// names are never present on the wire and NextField synthesizes positional
// names ("0", "1", ...) for the reflective marshaller to match by index.
type Reader struct {
	buf       buffer.Buffer
	data      []byte
	pos       int
	fieldLess bool
	fieldIdx  int
}

var _ valueio.ValueIn = (*Reader)(nil)

// NewReader creates a binary encoding reader starting at pos in buf.
func NewReader(buf buffer.Buffer, pos int, fieldLess bool) *Reader {
	return &Reader{buf: buf, data: buf.Bytes(), pos: pos, fieldLess: fieldLess}
}

func (r *Reader) peekCode() (code, error) {
	if r.pos >= len(r.data) {
		return 0, wireutil.ErrTruncation
	}
	return code(r.data[r.pos]), nil
}

func (r *Reader) readCode() (code, error) {
	c, err := r.peekCode()
	if err != nil {
		return 0, err
	}
	r.pos++
	return c, nil
}

func (r *Reader) expectCode(want code) error {
	got, err := r.readCode()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: expected code %d, got %d", wireutil.ErrTypeMismatch, want, got)
	}
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, wireutil.ErrTruncation
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) readText() (string, error) {
	n, adv, err := readVarint(r.data, r.pos)
	if err != nil {
		return "", err
	}
	r.pos += adv
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// skipTag consumes an optional leading codeTypePrefix ahead of a scalar or
// composite, discarding the class tag; the reflective marshaller resolves
// types from the field descriptor, not from this wire-level hint.
func (r *Reader) skipTag() error {
	c, err := r.peekCode()
	if err != nil {
		return err
	}
	if c != codeTypePrefix {
		return nil
	}
	r.pos++
	_, err = r.readText()
	return err
}

// skipLeaf consumes an optional codeLeafHint ahead of a composite.
func (r *Reader) skipLeaf() error {
	c, err := r.peekCode()
	if err != nil {
		return err
	}
	if c == codeLeafHint {
		r.pos++
	}
	return nil
}

func (r *Reader) Bool() (bool, error) {
	if err := r.skipTag(); err != nil {
		return false, err
	}
	c, err := r.readCode()
	if err != nil {
		return false, err
	}
	switch c {
	case codeBoolTrue:
		return true, nil
	case codeBoolFalse:
		return false, nil
	default:
		return false, wireutil.ErrTypeMismatch
	}
}

// readStoredInt consumes whichever of the eight integer lead codes is
// present - not necessarily the one the caller asked for - and returns
// its exact value as a 64-bit pattern plus whether the stored code was
// itself one of the signed kinds. Int8/16/32/64 and Uint8/16/32/64 all
// build on this so that reading a stored Int64 back through Int16 (or
// any other width) range-checks the actual value instead of failing on
// a lead-byte mismatch (§4.2, §8 property 6, S2).
func (r *Reader) readStoredInt() (raw uint64, signedOriginal bool, err error) {
	if err = r.skipTag(); err != nil {
		return 0, false, err
	}
	c, err := r.readCode()
	if err != nil {
		return 0, false, err
	}
	switch c {
	case codeInt8:
		b, e := r.take(1)
		if e != nil {
			return 0, false, e
		}
		return uint64(int64(int8(b[0]))), true, nil
	case codeInt16:
		b, e := r.take(2)
		if e != nil {
			return 0, false, e
		}
		return uint64(int64(int16(wireutil.UnmarshalUint16(b)))), true, nil
	case codeInt32:
		b, e := r.take(4)
		if e != nil {
			return 0, false, e
		}
		return uint64(int64(int32(wireutil.UnmarshalUint32(b)))), true, nil
	case codeInt64:
		b, e := r.take(8)
		if e != nil {
			return 0, false, e
		}
		return wireutil.UnmarshalUint64(b), true, nil
	case codeUint8:
		b, e := r.take(1)
		if e != nil {
			return 0, false, e
		}
		return uint64(b[0]), false, nil
	case codeUint16:
		b, e := r.take(2)
		if e != nil {
			return 0, false, e
		}
		return uint64(wireutil.UnmarshalUint16(b)), false, nil
	case codeUint32:
		b, e := r.take(4)
		if e != nil {
			return 0, false, e
		}
		return uint64(wireutil.UnmarshalUint32(b)), false, nil
	case codeUint64:
		b, e := r.take(8)
		if e != nil {
			return 0, false, e
		}
		return wireutil.UnmarshalUint64(b), false, nil
	default:
		return 0, false, fmt.Errorf("%w: expected an integer code, got %d", wireutil.ErrTypeMismatch, c)
	}
}

func signedRange(bits int) (lo, hi int64) {
	switch bits {
	case 8:
		return math.MinInt8, math.MaxInt8
	case 16:
		return math.MinInt16, math.MaxInt16
	case 32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func unsignedMax(bits int) uint64 {
	switch bits {
	case 8:
		return math.MaxUint8
	case 16:
		return math.MaxUint16
	case 32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

// pullSignedWidth reads the stored integer and range-checks it against a
// signed pull of the given width, leaving the cursor unchanged on
// failure.
func (r *Reader) pullSignedWidth(bits int) (int64, error) {
	start := r.pos
	raw, signedOriginal, err := r.readStoredInt()
	if err != nil {
		r.pos = start
		return 0, err
	}
	if !signedOriginal && raw > math.MaxInt64 {
		r.pos = start
		return 0, wireutil.ErrRangeViolation
	}
	v := int64(raw)
	lo, hi := signedRange(bits)
	if v < lo || v > hi {
		r.pos = start
		return 0, wireutil.ErrRangeViolation
	}
	return v, nil
}

// pullUnsignedWidth is pullSignedWidth's unsigned dual: a negative
// stored value never fits an unsigned pull of any width.
func (r *Reader) pullUnsignedWidth(bits int) (uint64, error) {
	start := r.pos
	raw, signedOriginal, err := r.readStoredInt()
	if err != nil {
		r.pos = start
		return 0, err
	}
	if signedOriginal && int64(raw) < 0 {
		r.pos = start
		return 0, wireutil.ErrRangeViolation
	}
	if raw > unsignedMax(bits) {
		r.pos = start
		return 0, wireutil.ErrRangeViolation
	}
	return raw, nil
}

func (r *Reader) Int8() (int8, error) {
	v, err := r.pullSignedWidth(8)
	return int8(v), err
}

func (r *Reader) Int16() (int16, error) {
	v, err := r.pullSignedWidth(16)
	return int16(v), err
}

func (r *Reader) Int32() (int32, error) {
	v, err := r.pullSignedWidth(32)
	return int32(v), err
}

func (r *Reader) Int64() (int64, error) {
	return r.pullSignedWidth(64)
}

func (r *Reader) Uint8() (uint8, error) {
	v, err := r.pullUnsignedWidth(8)
	return uint8(v), err
}

func (r *Reader) Uint16() (uint16, error) {
	v, err := r.pullUnsignedWidth(16)
	return uint16(v), err
}

func (r *Reader) Uint32() (uint32, error) {
	v, err := r.pullUnsignedWidth(32)
	return uint32(v), err
}

func (r *Reader) Uint64() (uint64, error) {
	return r.pullUnsignedWidth(64)
}

func (r *Reader) Float32() (float32, error) {
	if err := r.skipTag(); err != nil {
		return 0, err
	}
	if err := r.expectCode(codeFloat32); err != nil {
		return 0, err
	}
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(wireutil.UnmarshalUint32(b)), nil
}

func (r *Reader) Float64() (float64, error) {
	if err := r.skipTag(); err != nil {
		return 0, err
	}
	if err := r.expectCode(codeFloat64); err != nil {
		return 0, err
	}
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(wireutil.UnmarshalUint64(b)), nil
}

func (r *Reader) Text() (string, error) {
	if err := r.skipTag(); err != nil {
		return "", err
	}
	if err := r.expectCode(codeText); err != nil {
		return "", err
	}
	return r.readText()
}

func (r *Reader) Bytes() ([]byte, error) {
	if err := r.skipTag(); err != nil {
		return nil, err
	}
	if err := r.expectCode(codeBytes); err != nil {
		return nil, err
	}
	n, adv, err := readVarint(r.data, r.pos)
	if err != nil {
		return nil, err
	}
	r.pos += adv
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (r *Reader) timeValue(want code, layout string) (time.Time, error) {
	if err := r.skipTag(); err != nil {
		return time.Time{}, err
	}
	if err := r.expectCode(want); err != nil {
		return time.Time{}, err
	}
	s, err := r.readText()
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(layout, s)
}

func (r *Reader) LocalTime() (time.Time, error) {
	return r.timeValue(codeLocalTime, "15:04:05")
}

func (r *Reader) LocalDate() (time.Time, error) {
	return r.timeValue(codeLocalDate, "2006-01-02")
}

func (r *Reader) LocalDateTime() (time.Time, error) {
	return r.timeValue(codeLocalDateTime, "2006-01-02T15:04:05")
}

func (r *Reader) ZonedDateTime() (time.Time, error) {
	return r.timeValue(codeZonedDateTime, time.RFC3339)
}

func (r *Reader) UUID() (uuid.UUID, error) {
	if err := r.skipTag(); err != nil {
		return uuid.UUID{}, err
	}
	if err := r.expectCode(codeUUID); err != nil {
		return uuid.UUID{}, err
	}
	b, err := r.take(16)
	if err != nil {
		return uuid.UUID{}, err
	}
	var u uuid.UUID
	copy(u[:], b)
	return u, nil
}

func (r *Reader) TypeLiteral() (string, error) {
	if err := r.expectCode(codeTypeLiteral); err != nil {
		return "", err
	}
	return r.readText()
}

func (r *Reader) IsNull() bool {
	c, err := r.peekCode()
	if err != nil {
		return false
	}
	return c == codeNull
}

func (r *Reader) Null() error {
	return r.expectCode(codeNull)
}

func (r *Reader) TypePrefix() (string, bool) {
	c, err := r.peekCode()
	if err != nil || c != codeTypePrefix {
		return "", false
	}
	save := r.pos
	r.pos++
	name, err := r.readText()
	r.pos = save
	if err != nil {
		return "", false
	}
	return name, true
}

func (r *Reader) ReadLength() (int, error) {
	start, idx := r.pos, r.fieldIdx
	err := r.Skip()
	end := r.pos
	r.pos, r.fieldIdx = start, idx
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

func (r *Reader) Skip() error {
	if err := r.skipTag(); err != nil {
		return err
	}
	if err := r.skipLeaf(); err != nil {
		return err
	}
	c, err := r.readCode()
	if err != nil {
		return err
	}
	switch c {
	case codeNull, codeBoolFalse, codeBoolTrue:
		return nil
	case codeInt8, codeUint8:
		_, err = r.take(1)
	case codeInt16, codeUint16:
		_, err = r.take(2)
	case codeInt32, codeUint32, codeFloat32:
		_, err = r.take(4)
	case codeInt64, codeUint64, codeFloat64:
		_, err = r.take(8)
	case codeUUID:
		_, err = r.take(16)
	case codeText, codeLocalTime, codeLocalDate, codeLocalDateTime, codeZonedDateTime, codeTypeLiteral:
		_, err = r.readText()
	case codeBytes:
		var n uint64
		var adv int
		n, adv, err = readVarint(r.data, r.pos)
		if err == nil {
			r.pos += adv
			_, err = r.take(int(n))
		}
	case codeCompressedBlob:
		if _, err = r.readText(); err == nil {
			var n uint64
			var adv int
			n, adv, err = readVarint(r.data, r.pos)
			if err == nil {
				r.pos += adv
				_, err = r.take(int(n))
			}
		}
	case codeSequenceStart:
		for {
			cc, perr := r.peekCode()
			if perr != nil {
				return perr
			}
			if cc == codeSequenceEnd {
				r.pos++
				return nil
			}
			if err = r.Skip(); err != nil {
				return err
			}
		}
	case codeRecordStart:
		for {
			cc, perr := r.peekCode()
			if perr != nil {
				return perr
			}
			if cc == codeRecordEnd {
				r.pos++
				return nil
			}
			if cc == codeFieldName {
				r.pos++
				if _, err = r.readText(); err != nil {
					return err
				}
				continue
			}
			if err = r.Skip(); err != nil {
				return err
			}
		}
	case codeRefInt32:
		_, err = r.take(4)
	case codeRefInt64:
		_, err = r.take(8)
	case codeRefInt64Array:
		var n uint64
		var adv int
		n, adv, err = readVarint(r.data, r.pos)
		if err == nil {
			r.pos += adv
			_, err = r.take(int(n) * 8)
		}
	default:
		return fmt.Errorf("%w: unknown code %d", wireutil.ErrUnknownTypeTag, c)
	}
	return err
}

func (r *Reader) Sequence(fn func(items valueio.ValueIn) bool) error {
	if err := r.skipTag(); err != nil {
		return err
	}
	if err := r.skipLeaf(); err != nil {
		return err
	}
	if err := r.expectCode(codeSequenceStart); err != nil {
		return err
	}
	for {
		c, err := r.peekCode()
		if err != nil {
			return err
		}
		if c == codeSequenceEnd {
			r.pos++
			return nil
		}
		if !fn(r) {
			return nil
		}
	}
}

func (r *Reader) Record(fn func(inner valueio.ValueIn) error) error {
	if err := r.skipTag(); err != nil {
		return err
	}
	if err := r.skipLeaf(); err != nil {
		return err
	}
	if err := r.expectCode(codeRecordStart); err != nil {
		return err
	}
	savedIdx := r.fieldIdx
	r.fieldIdx = 0
	if err := fn(r); err != nil {
		return err
	}
	r.fieldIdx = savedIdx
	// a well-behaved fn calls NextField until it returns false, which
	// leaves the cursor on codeRecordEnd; consume it.
	c, err := r.peekCode()
	if err != nil {
		return err
	}
	if c == codeRecordEnd {
		r.pos++
		return nil
	}
	return wireutil.ErrUnterminatedRecord
}

func (r *Reader) Map(fn func(key string, v valueio.ValueIn) error) error {
	return r.Record(func(inner valueio.ValueIn) error {
		for {
			key, ok := inner.NextField()
			if !ok {
				return nil
			}
			if err := fn(key, inner); err != nil {
				return err
			}
		}
	})
}

func (r *Reader) NextField() (string, bool) {
	c, err := r.peekCode()
	if err != nil {
		return "", false
	}
	if c == codeRecordEnd {
		return "", false
	}
	if r.fieldLess {
		name := fmt.Sprintf("%d", r.fieldIdx)
		r.fieldIdx++
		return name, true
	}
	if c != codeFieldName {
		return "", false
	}
	save := r.pos
	r.pos++
	name, err := r.readText()
	if err != nil {
		r.pos = save
		return "", false
	}
	return name, true
}

func (r *Reader) Object() (any, error) {
	if err := r.skipTag(); err != nil {
		return nil, err
	}
	c, err := r.peekCode()
	if err != nil {
		return nil, err
	}
	switch c {
	case codeNull:
		r.pos++
		return nil, nil
	case codeBoolFalse, codeBoolTrue:
		return r.Bool()
	case codeInt8:
		return r.Int8()
	case codeInt16:
		return r.Int16()
	case codeInt32:
		return r.Int32()
	case codeInt64:
		return r.Int64()
	case codeUint8:
		return r.Uint8()
	case codeUint16:
		return r.Uint16()
	case codeUint32:
		return r.Uint32()
	case codeUint64:
		return r.Uint64()
	case codeFloat32:
		return r.Float32()
	case codeFloat64:
		return r.Float64()
	case codeText:
		return r.Text()
	case codeBytes:
		return r.Bytes()
	case codeUUID:
		return r.UUID()
	case codeSequenceStart:
		var items []any
		err := r.Sequence(func(v valueio.ValueIn) bool {
			item, ierr := v.Object()
			if ierr != nil {
				return false
			}
			items = append(items, item)
			return true
		})
		return items, err
	case codeRecordStart:
		m := map[string]any{}
		err := r.Record(func(inner valueio.ValueIn) error {
			for {
				key, ok := inner.NextField()
				if !ok {
					return nil
				}
				v, verr := inner.Object()
				if verr != nil {
					return verr
				}
				m[key] = v
			}
		})
		return m, err
	default:
		return nil, fmt.Errorf("%w: unknown code %d", wireutil.ErrUnknownTypeTag, c)
	}
}

func (r *Reader) CompressedBlob(fn func(rr valueio.ValueIn) error) error {
	if err := r.expectCode(codeCompressedBlob); err != nil {
		return err
	}
	codec, err := r.readText()
	if err != nil {
		return err
	}
	n, adv, err := readVarint(r.data, r.pos)
	if err != nil {
		return err
	}
	r.pos += adv
	blob, err := r.take(int(n))
	if err != nil {
		return err
	}
	if c, lerr := compress.Lookup(codec); lerr == nil {
		if unpacked, derr := c.Decompress(blob); derr == nil {
			blob = unpacked
		}
	}
	inner := &Reader{buf: r.buf, data: blob, pos: 0, fieldLess: r.fieldLess}
	return fn(inner)
}

func (r *Reader) refCellPos(want code, width int) (int, error) {
	if err := r.expectCode(want); err != nil {
		return 0, err
	}
	pos := r.pos
	if _, err := r.take(width); err != nil {
		return 0, err
	}
	return pos, nil
}

func (r *Reader) Int32Reference() (valueio.Int32Ref, error) {
	pos, err := r.refCellPos(codeRefInt32, 4)
	if err != nil {
		return nil, err
	}
	return framing.OpenBinaryInt32Ref(r.buf, pos), nil
}

func (r *Reader) Int64Reference() (valueio.Int64Ref, error) {
	pos, err := r.refCellPos(codeRefInt64, 8)
	if err != nil {
		return nil, err
	}
	return framing.OpenBinaryInt64Ref(r.buf, pos), nil
}

func (r *Reader) Int64ArrayReference() (valueio.Int64ArrayRef, error) {
	if err := r.expectCode(codeRefInt64Array); err != nil {
		return nil, err
	}
	n, adv, err := readVarint(r.data, r.pos)
	if err != nil {
		return nil, err
	}
	r.pos += adv
	pos := r.pos
	if _, err := r.take(int(n) * 8); err != nil {
		return nil, err
	}
	return framing.OpenBinaryInt64ArrayRef(r.buf, pos, int(n)), nil
}
