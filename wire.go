// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

// Package wire ties the framing, encoding, and reflection layers together
// into the engine a caller actually drives: a Wire is bound to one
// WireType and one set of Options, and exposes Marshal/Unmarshal against a
// shared buffer.Buffer, the way the teacher's DynSsz binds a TypeCache and
// a set of specs to a concrete (de)serialization call.
package wire

import (
	"fmt"

	"github.com/wirefmt/wire/buffer"
	"github.com/wirefmt/wire/compress"
	"github.com/wirefmt/wire/framing"
	"github.com/wirefmt/wire/reflectmars"
	"github.com/wirefmt/wire/valueio"
	"github.com/wirefmt/wire/wirebinary"
	"github.com/wirefmt/wire/wiretext"
)

// Wire binds one WireType and one set of Options to a reusable
// reflectmars.Marshaller, mirroring the teacher's top-level DynSsz: a
// single long-lived value a caller keeps around and calls repeatedly.
type Wire struct {
	kind    WireType
	opts    Options
	mars    *reflectmars.Marshaller
	numbers *framing.Numbering
}

// New creates a Wire of the given type with opts applied over the
// defaults (256 byte compression threshold, gzip codec, fmt.Printf
// logging). Each Wire appends its own documents single-writer-style; a
// shared, concurrently-written Buffer should reserve its own
// framing.Tail and call framing.EnterWriting directly instead of going
// through Wire.Marshal.
func New(kind WireType, opts ...Option) *Wire {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	mars := reflectmars.New(o.Types, o.Strategies)
	mars.SetNumericFieldIDs(o.NumericID)
	return &Wire{
		kind:    kind,
		opts:    o,
		mars:    mars,
		numbers: &framing.Numbering{},
	}
}

func (w *Wire) logf(format string, args ...any) {
	if w.opts.Verbose && w.opts.LogCb != nil {
		w.opts.LogCb(format, args...)
	}
}

func (w *Wire) fieldLess() bool {
	return w.opts.FieldLess || w.kind == TypeBinaryFieldLess
}

func (w *Wire) newValueOut(buf buffer.Buffer) valueio.ValueOut {
	switch w.kind {
	case TypeText, TypeJSON:
		tw := wiretext.NewWriter(buf, w.opts.Use8BitText)
		if w.kind == TypeJSON {
			tw.SetForceQuote(true)
		}
		return tw
	default:
		return wirebinary.NewWriter(buf, w.fieldLess())
	}
}

func (w *Wire) newValueIn(buf buffer.Buffer, pos int) valueio.ValueIn {
	switch w.kind {
	case TypeText, TypeJSON:
		return wiretext.NewReader(buf, pos)
	default:
		return wirebinary.NewReader(buf, pos, w.fieldLess())
	}
}

// Marshal encodes v and appends it to buf. For TypeRaw, json, and csv no
// document framing is written and Marshal returns (0, err). Otherwise v
// is wrapped in a sealed document header (§3) and, for a DATA document,
// assigned the next sequence number.
func (w *Wire) Marshal(buf buffer.Buffer, v any, isMeta bool) (uint64, error) {
	if w.kind == TypeCSV {
		return 0, w.marshalCSV(buf, v)
	}

	if w.kind == TypeRaw || w.kind == TypeJSON {
		out := w.newValueOut(buf)
		return 0, w.mars.Marshal(out, v)
	}

	wc, err := framing.EnterWriting(buf, isMeta, nil, w.numbers)
	if err != nil {
		return 0, err
	}

	if w.kind == TypeCompressedBinary {
		staging := buffer.NewGrowable(64)
		out := wirebinary.NewWriter(staging, w.fieldLess())
		if err := w.mars.Marshal(out, v); err != nil {
			wc.Abandon()
			buf.Truncate(wc.PayloadPos() - framing.HeaderSize)
			return 0, err
		}
		payload := staging.Bytes()
		codec, cerr := compress.Lookup(w.opts.CompressionCodec)
		if cerr == nil && len(payload) >= w.opts.CompressionThreshold {
			if packed, perr := codec.Compress(payload); perr == nil {
				payload = packed
			}
		}
		buf.Append(payload)
	} else {
		out := w.newValueOut(buf)
		if tw, ok := out.(*wiretext.Writer); ok && w.kind == TypeText {
			tw.WriteDocumentMarker(isMeta)
		}
		if err := w.mars.Marshal(out, v); err != nil {
			wc.Abandon()
			buf.Truncate(wc.PayloadPos() - framing.HeaderSize)
			return 0, err
		}
	}

	docNumber, err := wc.Close()
	if err != nil {
		return 0, err
	}
	w.logf("wire: sealed document #%d at pos %d (meta=%v)", docNumber, wc.PayloadPos(), isMeta)
	return docNumber, nil
}

// Unmarshal reads one framed document starting at pos and decodes it into
// dst, which must be a non-nil pointer. TypeRaw/json/csv have no framing
// and decode directly from pos.
func (w *Wire) Unmarshal(buf buffer.Buffer, pos int, dst any) error {
	if w.kind == TypeCSV {
		return w.unmarshalCSV(buf, pos, dst)
	}
	if w.kind == TypeRaw || w.kind == TypeJSON {
		in := w.newValueIn(buf, pos)
		return w.mars.Unmarshal(in, dst, true)
	}

	rc, err := framing.NewReader(buf, pos).Next()
	if err != nil {
		return err
	}
	if rc == nil {
		return fmt.Errorf("wire: no document at offset %d", pos)
	}

	if w.kind == TypeCompressedBinary {
		raw, err := buf.ReadAt(rc.PayloadPos(), int(rc.Header.Length()))
		if err != nil {
			return err
		}
		payload := raw
		if codec, cerr := compress.Lookup(w.opts.CompressionCodec); cerr == nil {
			if unpacked, derr := codec.Decompress(raw); derr == nil {
				payload = unpacked
			}
		}
		staging := buffer.NewGrowableFrom(payload)
		in := wirebinary.NewReader(staging, 0, w.fieldLess())
		return w.mars.Unmarshal(in, dst, true)
	}

	in := w.newValueIn(buf, rc.PayloadPos())
	if tr, ok := in.(*wiretext.Reader); ok && w.kind == TypeText {
		if _, err := tr.ReadDocumentMarker(); err != nil {
			return err
		}
	}
	return w.mars.Unmarshal(in, dst, true)
}

// NewSniffingReader implements the `read-any` profile (§6 [SUPPLEMENTED]
// #1): it inspects the first non-whitespace byte of buf starting at pos
// and returns a ValueIn for whichever concrete encoding that byte
// indicates, without requiring the caller to know in advance which one
// produced the payload.
//
// A `-` or ASCII letter means the payload opens with a text document
// marker or a bare text scalar; anything else is treated as a binary
// lead-byte code.
func NewSniffingReader(buf buffer.Buffer, pos int, fieldLess bool) (valueio.ValueIn, error) {
	data := buf.Bytes()
	i := pos
	for i < len(data) && (data[i] == ' ' || data[i] == '\t' || data[i] == '\n' || data[i] == '\r') {
		i++
	}
	if i >= len(data) {
		return nil, fmt.Errorf("wire: read-any: empty payload at offset %d", pos)
	}
	b := data[i]
	if b == '-' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') {
		return wiretext.NewReader(buf, pos), nil
	}
	return wirebinary.NewReader(buf, pos, fieldLess), nil
}
