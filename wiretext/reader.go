// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wiretext

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wirefmt/wire/buffer"
	"github.com/wirefmt/wire/compress"
	"github.com/wirefmt/wire/valueio"
	"github.com/wirefmt/wire/wireutil"
)

// Reader is the text encoding's ValueIn. The writer's grammar always
// delimits composites with explicit brackets ({...}, [...]) rather than
// YAML's indentation-sensitive block style, so the reader can parse by
// bracket matching instead of tracking indent columns.
type Reader struct {
	buf  buffer.Buffer
	data []byte
	pos  int
}

var _ valueio.ValueIn = (*Reader)(nil)

// NewReader creates a text decoder reading buf's bytes starting at pos.
// Positions recorded by reference-cell handles are absolute offsets into
// buf, matching how Writer lays them down.
func NewReader(buf buffer.Buffer, pos int) *Reader {
	return &Reader{buf: buf, data: buf.Bytes(), pos: pos}
}

// ReadDocumentMarker consumes the `--- !!data` / `--- !!meta-data` line
// a text document opens with, the dual of Writer.WriteDocumentMarker.
func (r *Reader) ReadDocumentMarker() (isMeta bool, err error) {
	r.skipWS()
	const metaMarker = "--- !!meta-data\n"
	const dataMarker = "--- !!data\n"
	if r.hasPrefix(metaMarker) {
		r.pos += len(metaMarker)
		return true, nil
	}
	if r.hasPrefix(dataMarker) {
		r.pos += len(dataMarker)
		return false, nil
	}
	return false, fmt.Errorf("wiretext: missing document marker at offset %d", r.pos)
}

func (r *Reader) hasPrefix(s string) bool {
	return r.pos+len(s) <= len(r.data) && string(r.data[r.pos:r.pos+len(s)]) == s
}

func isSeparator(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ','
}

func isBreak(c byte) bool {
	return c == '\n' || c == '\r' || c == ',' || c == '}' || c == ']' || c == ':'
}

func (r *Reader) skipWS() {
	for r.pos < len(r.data) && isSeparator(r.data[r.pos]) {
		r.pos++
	}
}

// peekTypeTag reports the pending "!Name" type-prefix tag ahead of the
// cursor, if any, without consuming it. The !!null, !binary, and !type
// special forms are not type-prefix tags and are excluded.
func (r *Reader) peekTypeTag() (string, bool) {
	p := r.pos
	for p < len(r.data) && isSeparator(r.data[p]) {
		p++
	}
	if p >= len(r.data) || r.data[p] != '!' {
		return "", false
	}
	start := p
	p++
	for p < len(r.data) && r.data[p] != ' ' && r.data[p] != '\t' && r.data[p] != '\n' {
		p++
	}
	word := string(r.data[start:p])
	switch word {
	case "!!null", "!binary", "!type":
		return "", false
	default:
		return word[1:], true
	}
}

func (r *Reader) consumeTypeTag() {
	if _, ok := r.peekTypeTag(); !ok {
		return
	}
	r.skipWS()
	for r.pos < len(r.data) && r.data[r.pos] != ' ' {
		r.pos++
	}
	if r.pos < len(r.data) && r.data[r.pos] == ' ' {
		r.pos++
	}
}

func (r *Reader) peekBangWord() string {
	p := r.pos
	for p < len(r.data) && r.data[p] != ' ' && r.data[p] != '\t' && r.data[p] != '\n' {
		p++
	}
	return string(r.data[r.pos:p])
}

func (r *Reader) advanceBangWord() {
	for r.pos < len(r.data) && r.data[r.pos] != ' ' && r.data[r.pos] != '\t' && r.data[r.pos] != '\n' {
		r.pos++
	}
	if r.pos < len(r.data) && r.data[r.pos] == ' ' {
		r.pos++
	}
}

func (r *Reader) readRawToken() string {
	r.skipWS()
	if r.pos >= len(r.data) {
		return ""
	}
	switch r.data[r.pos] {
	case '"':
		return r.readDoubleQuoted()
	case '\'':
		return r.readSingleQuoted()
	}
	start := r.pos
	for r.pos < len(r.data) && !isBreak(r.data[r.pos]) {
		r.pos++
	}
	end := r.pos
	for end > start && (r.data[end-1] == ' ' || r.data[end-1] == '\t') {
		end--
	}
	return string(r.data[start:end])
}

func (r *Reader) readDoubleQuoted() string {
	start := r.pos
	r.pos++
	for r.pos < len(r.data) {
		c := r.data[r.pos]
		if c == '\\' {
			r.pos += 2
			continue
		}
		if c == '"' {
			r.pos++
			break
		}
		r.pos++
	}
	raw := string(r.data[start:r.pos])
	unquoted, err := strconv.Unquote(raw)
	if err != nil {
		return raw
	}
	return unquoted
}

func (r *Reader) readSingleQuoted() string {
	r.pos++
	var sb strings.Builder
	for r.pos < len(r.data) {
		c := r.data[r.pos]
		if c == '\'' {
			if r.pos+1 < len(r.data) && r.data[r.pos+1] == '\'' {
				sb.WriteByte('\'')
				r.pos += 2
				continue
			}
			r.pos++
			break
		}
		sb.WriteByte(c)
		r.pos++
	}
	return sb.String()
}

// valueToken skips a pending type-prefix tag, then returns the literal
// text of the next scalar, resolving !!null/!binary/!type specially.
func (r *Reader) valueToken() (string, error) {
	r.skipWS()
	r.consumeTypeTag()
	r.skipWS()
	if r.pos >= len(r.data) {
		return "", fmt.Errorf("wiretext: unexpected end of input")
	}
	if r.data[r.pos] == '!' {
		switch r.peekBangWord() {
		case "!!null":
			r.advanceBangWord()
			r.readRawToken()
			return "", nil
		case "!binary", "!type":
			r.advanceBangWord()
			return r.readRawToken(), nil
		}
	}
	return r.readRawToken(), nil
}

// ---- scalar pulls ----

func (r *Reader) Bool() (bool, error) {
	tok, err := r.valueToken()
	if err != nil {
		return false, err
	}
	return tok == "true", nil
}

func (r *Reader) parseInt(bits int) (int64, error) {
	start := r.pos
	tok, err := r.valueToken()
	if err != nil {
		r.pos = start
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, bits)
	if err != nil {
		r.pos = start
		return 0, fmt.Errorf("wiretext: %w", numErrOrRangeViolation(err))
	}
	return v, nil
}

func (r *Reader) parseUint(bits int) (uint64, error) {
	start := r.pos
	tok, err := r.valueToken()
	if err != nil {
		r.pos = start
		return 0, err
	}
	v, err := strconv.ParseUint(tok, 10, bits)
	if err != nil {
		r.pos = start
		return 0, fmt.Errorf("wiretext: %w", numErrOrRangeViolation(err))
	}
	return v, nil
}

// numErrOrRangeViolation maps a strconv out-of-range failure to
// wireutil.ErrRangeViolation (§8 property 6, S2) so callers can
// errors.Is against it; a malformed (non-numeric) token keeps its
// original strconv error.
func numErrOrRangeViolation(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		return wireutil.ErrRangeViolation
	}
	return err
}

func (r *Reader) Int8() (int8, error)   { v, err := r.parseInt(8); return int8(v), err }
func (r *Reader) Int16() (int16, error) { v, err := r.parseInt(16); return int16(v), err }
func (r *Reader) Int32() (int32, error) { v, err := r.parseInt(32); return int32(v), err }
func (r *Reader) Int64() (int64, error) { return r.parseInt(64) }

func (r *Reader) Uint8() (uint8, error)   { v, err := r.parseUint(8); return uint8(v), err }
func (r *Reader) Uint16() (uint16, error) { v, err := r.parseUint(16); return uint16(v), err }
func (r *Reader) Uint32() (uint32, error) { v, err := r.parseUint(32); return uint32(v), err }
func (r *Reader) Uint64() (uint64, error) { return r.parseUint(64) }

func (r *Reader) Float32() (float32, error) {
	tok, err := r.valueToken()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, fmt.Errorf("wiretext: %w", err)
	}
	return float32(v), nil
}

func (r *Reader) Float64() (float64, error) {
	tok, err := r.valueToken()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("wiretext: %w", err)
	}
	return v, nil
}

func (r *Reader) Text() (string, error) { return r.valueToken() }

func (r *Reader) Bytes() ([]byte, error) {
	tok, err := r.valueToken()
	if err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		return nil, fmt.Errorf("wiretext: %w", err)
	}
	return b, nil
}

func (r *Reader) LocalTime() (time.Time, error)     { return r.parseTime("15:04:05") }
func (r *Reader) LocalDate() (time.Time, error)     { return r.parseTime("2006-01-02") }
func (r *Reader) LocalDateTime() (time.Time, error) { return r.parseTime("2006-01-02T15:04:05") }
func (r *Reader) ZonedDateTime() (time.Time, error) { return r.parseTime(time.RFC3339) }

func (r *Reader) parseTime(layout string) (time.Time, error) {
	tok, err := r.valueToken()
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(layout, tok)
	if err != nil {
		return time.Time{}, fmt.Errorf("wiretext: %w", err)
	}
	return t, nil
}

func (r *Reader) UUID() (uuid.UUID, error) {
	tok, err := r.valueToken()
	if err != nil {
		return uuid.UUID{}, err
	}
	id, err := uuid.Parse(tok)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("wiretext: %w", err)
	}
	return id, nil
}

func (r *Reader) TypeLiteral() (string, error) { return r.valueToken() }

func (r *Reader) IsNull() bool {
	p := r.pos
	for p < len(r.data) && isSeparator(r.data[p]) {
		p++
	}
	return p+6 <= len(r.data) && string(r.data[p:p+6]) == "!!null"
}

func (r *Reader) Null() error {
	_, err := r.valueToken()
	return err
}

func (r *Reader) TypePrefix() (string, bool) { return r.peekTypeTag() }

func (r *Reader) ReadLength() (int, error) {
	save := r.pos
	r.skipWS()
	start := r.pos
	err := r.Skip()
	end := r.pos
	r.pos = save
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

func (r *Reader) Skip() error {
	r.skipWS()
	r.consumeTypeTag()
	r.skipWS()
	if r.pos >= len(r.data) {
		return fmt.Errorf("wiretext: unexpected end of input while skipping")
	}
	switch r.data[r.pos] {
	case '{':
		return r.skipBracketed('{', '}')
	case '[':
		return r.skipBracketed('[', ']')
	case '!':
		_, err := r.valueToken()
		return err
	default:
		r.readRawToken()
		return nil
	}
}

func (r *Reader) skipBracketed(open, close byte) error {
	r.pos++
	depth := 1
	for r.pos < len(r.data) && depth > 0 {
		switch r.data[r.pos] {
		case '"':
			r.readDoubleQuoted()
			continue
		case '\'':
			r.readSingleQuoted()
			continue
		case open:
			depth++
		case close:
			depth--
		}
		r.pos++
	}
	if depth != 0 {
		return fmt.Errorf("wiretext: unterminated composite")
	}
	return nil
}

// ---- composites ----

func (r *Reader) Sequence(fn func(items valueio.ValueIn) bool) error {
	r.skipWS()
	r.consumeTypeTag()
	r.skipWS()
	if r.pos >= len(r.data) || r.data[r.pos] != '[' {
		return fmt.Errorf("wiretext: expected '[' for sequence at offset %d", r.pos)
	}
	r.pos++
	for {
		r.skipWS()
		if r.pos < len(r.data) && r.data[r.pos] == ']' {
			r.pos++
			return nil
		}
		if r.pos >= len(r.data) {
			return fmt.Errorf("wiretext: unterminated sequence")
		}
		if !fn(r) {
			return nil
		}
	}
}

func (r *Reader) Record(fn func(inner valueio.ValueIn) error) error {
	r.skipWS()
	r.consumeTypeTag()
	r.skipWS()
	if r.pos >= len(r.data) || r.data[r.pos] != '{' {
		return fmt.Errorf("wiretext: expected '{' for record at offset %d", r.pos)
	}
	r.pos++
	return fn(r)
}

func (r *Reader) NextField() (string, bool) {
	r.skipWS()
	if r.pos < len(r.data) && r.data[r.pos] == '}' {
		r.pos++
		return "", false
	}
	if r.pos >= len(r.data) {
		return "", false
	}
	name := r.readRawToken()
	r.skipWS()
	if r.pos < len(r.data) && r.data[r.pos] == ':' {
		r.pos++
	}
	return name, true
}

// NextRootField is the document-root dual of Writer's lazily-established
// root frame (§8 S3): the root is an unbracketed sequence of named
// fields terminated by end of input rather than a '}'.
func (r *Reader) NextRootField() (string, bool) {
	r.skipWS()
	if r.pos >= len(r.data) {
		return "", false
	}
	name := r.readRawToken()
	r.skipWS()
	if r.pos < len(r.data) && r.data[r.pos] == ':' {
		r.pos++
	}
	return name, true
}

func (r *Reader) Map(fn func(key string, v valueio.ValueIn) error) error {
	r.skipWS()
	r.consumeTypeTag()
	r.skipWS()
	if r.pos >= len(r.data) || r.data[r.pos] != '{' {
		return fmt.Errorf("wiretext: expected '{' for map at offset %d", r.pos)
	}
	r.pos++
	for {
		name, ok := r.NextField()
		if !ok {
			return nil
		}
		if err := fn(name, r); err != nil {
			return err
		}
	}
}

// Object performs an untyped structural decode; a pending type-prefix tag
// is skipped, not resolved to a concrete Go type: records/maps become
// map[string]any, sequences become []any, scalars come back as string.
func (r *Reader) Object() (any, error) {
	r.consumeTypeTag()
	r.skipWS()
	if r.pos >= len(r.data) {
		return nil, fmt.Errorf("wiretext: unexpected end of input")
	}
	switch r.data[r.pos] {
	case '{':
		out := map[string]any{}
		err := r.Map(func(key string, v valueio.ValueIn) error {
			val, err := v.Object()
			if err != nil {
				return err
			}
			out[key] = val
			return nil
		})
		return out, err
	case '[':
		var out []any
		var itemErr error
		err := r.Sequence(func(items valueio.ValueIn) bool {
			val, err := items.Object()
			if err != nil {
				itemErr = err
				return false
			}
			out = append(out, val)
			return true
		})
		if itemErr != nil {
			return nil, itemErr
		}
		return out, err
	default:
		if r.IsNull() {
			return nil, r.Null()
		}
		return r.valueToken()
	}
}

func (r *Reader) CompressedBlob(fn func(r valueio.ValueIn) error) error {
	r.skipWS()
	if r.pos >= len(r.data) || r.data[r.pos] != '!' {
		return fmt.Errorf("wiretext: expected compressed blob tag at offset %d", r.pos)
	}
	codec := r.peekBangWord()[1:]
	r.advanceBangWord()
	if r.pos >= len(r.data) || r.data[r.pos] != '!' || r.peekBangWord() != "!binary" {
		return fmt.Errorf("wiretext: expected !binary after compression codec tag")
	}
	r.advanceBangWord()
	b64 := r.readRawToken()
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("wiretext: %w", err)
	}
	if c, err := compress.Lookup(codec); err == nil {
		if unpacked, err := c.Decompress(raw); err == nil {
			raw = unpacked
		}
	}
	inner := &Reader{data: raw, pos: 0}
	return fn(inner)
}

// ---- reference cells ----

func (r *Reader) Int32Reference() (valueio.Int32Ref, error) {
	pos, err := r.refCellPos()
	if err != nil {
		return nil, err
	}
	return &Int32Ref{buf: r.buf, pos: pos}, nil
}

func (r *Reader) Int64Reference() (valueio.Int64Ref, error) {
	pos, err := r.refCellPos()
	if err != nil {
		return nil, err
	}
	return &Int64Ref{buf: r.buf, pos: pos}, nil
}

func (r *Reader) refCellPos() (int, error) {
	r.skipWS()
	if r.buf == nil {
		return 0, fmt.Errorf("wiretext: reference cells require a backing buffer")
	}
	if r.pos+refWidth > len(r.data) {
		return 0, fmt.Errorf("wiretext: truncated reference cell")
	}
	pos := r.pos
	r.pos += refWidth
	return pos, nil
}

func (r *Reader) Int64ArrayReference() (valueio.Int64ArrayRef, error) {
	r.skipWS()
	if r.buf == nil {
		return nil, fmt.Errorf("wiretext: reference cells require a backing buffer")
	}
	if r.pos >= len(r.data) || r.data[r.pos] != '[' {
		return nil, fmt.Errorf("wiretext: expected '[' for reference array")
	}
	r.pos++
	var positions []int
	for {
		r.skipWS()
		if r.pos < len(r.data) && r.data[r.pos] == ']' {
			r.pos++
			break
		}
		if r.pos+refWidth > len(r.data) {
			return nil, fmt.Errorf("wiretext: truncated reference array cell")
		}
		positions = append(positions, r.pos)
		r.pos += refWidth
	}
	return &Int64ArrayRef{buf: r.buf, positions: positions}, nil
}
