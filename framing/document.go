// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package framing

import (
	"sync/atomic"

	"github.com/wirefmt/wire/buffer"
	"github.com/wirefmt/wire/wireutil"
)

// Tail allocates disjoint header slots for concurrent writers sharing one
// Buffer. Position allocation (Tail) and header-state transition (the CAS
// in WritingContext) are deliberately separate: the tail guarantees two
// writers never target the same offset, the CAS guarantees a half-written
// header is never mistaken for a finished one.
type Tail struct {
	next atomic.Int64
}

// NewTail creates a Tail whose first reservation starts at pos.
func NewTail(pos int64) *Tail {
	t := &Tail{}
	t.next.Store(pos)
	return t
}

// Reserve atomically claims n bytes and returns the offset reserved.
func (t *Tail) Reserve(n int) int64 {
	return t.next.Add(int64(n)) - int64(n)
}

// Numbering assigns monotonically increasing sequence numbers to DATA
// documents. META documents never call Next and so stay transparent to the
// sequence, as required by the framing contract.
type Numbering struct {
	next atomic.Uint64
}

// Next returns the next DATA document number.
func (n *Numbering) Next() uint64 { return n.next.Add(1) - 1 }

// WritingContext binds the lifetime of one framed document: Enter reserves
// the header placeholder, the caller appends the payload through a wire
// encoding, and Close back-patches the real length or Abandon leaves the
// not-complete bit set forever.
type WritingContext struct {
	buf       buffer.Buffer
	pos       int
	isMeta    bool
	numbering *Numbering
	closed    bool
}

// EnterWriting reserves a document header in buf. If tail is non-nil the
// header position is allocated via Tail.Reserve (safe for concurrent
// writers against a pre-sized Buffer); otherwise the header is appended,
// which is only safe for a single writer.
func EnterWriting(buf buffer.Buffer, isMeta bool, tail *Tail, numbering *Numbering) (*WritingContext, error) {
	placeholder := placeholderWord(isMeta)
	header := wireutil.MarshalUint32(nil, placeholder)

	var pos int
	if tail != nil {
		pos = int(tail.Reserve(HeaderSize))
		if err := buf.WriteAt(pos, header); err != nil {
			return nil, err
		}
	} else {
		pos = buf.Append(header)
	}

	return &WritingContext{buf: buf, pos: pos, isMeta: isMeta, numbering: numbering}, nil
}

// PayloadPos returns the buffer offset the document's payload begins at,
// i.e. where the caller should start appending encoded bytes.
func (wc *WritingContext) PayloadPos() int { return wc.pos + HeaderSize }

// Close measures the payload written since Enter, back-patches the header
// with its final length, and - for a DATA document with a Numbering
// attached - assigns and returns the document's sequence number. Calling
// Close a second time is a no-op returning (0, nil).
func (wc *WritingContext) Close() (uint64, error) {
	if wc.closed {
		return 0, nil
	}
	length := wc.buf.Len() - wc.PayloadPos()
	if length < 0 || uint32(length) > LengthMask {
		wc.Abandon()
		return 0, wireutil.ErrPayloadTooLarge
	}

	var docNumber uint64
	if !wc.isMeta && wc.numbering != nil {
		docNumber = wc.numbering.Next()
	}

	old := placeholderWord(wc.isMeta)
	final := finalWord(wc.isMeta, uint32(length))
	if !wc.buf.CompareAndSwapUint32(wc.pos, old, final) {
		return 0, wireutil.ErrHeaderAcquireTimeout
	}
	wc.closed = true
	return docNumber, nil
}

// Abandon leaves the not-complete bit set, permanently hiding the document
// from readers. The payload bytes already appended are not reclaimed; a
// Growable buffer can be Truncated back to wc.pos by the caller if reuse
// of the space is wanted and no other writer has appended past it since.
func (wc *WritingContext) Abandon() {
	wc.closed = true
}

// ReadingContext is a parsed, already-sealed document header together with
// the payload bounds it describes.
type ReadingContext struct {
	Header  Header
	pos     int
	payload int
}

// PayloadPos returns the offset the document's payload begins at.
func (rc *ReadingContext) PayloadPos() int { return rc.payload }

// NextPos returns the offset immediately following this document,
// regardless of how much of the payload the caller actually consumed.
func (rc *ReadingContext) NextPos() int { return rc.payload + int(rc.Header.Length()) }

// Reader walks a sequence of framed documents in a Buffer from a starting
// offset, skipping documents whichever side left unconsumed.
type Reader struct {
	buf buffer.Buffer
	pos int
}

// NewReader creates a Reader starting at pos.
func NewReader(buf buffer.Buffer, pos int) *Reader {
	return &Reader{buf: buf, pos: pos}
}

// Pos returns the reader's current offset.
func (r *Reader) Pos() int { return r.pos }

// Next parses the header at the reader's current position and advances
// past it. It returns (nil, nil) at end of input (fewer than HeaderSize
// bytes remain) and (nil, nil) when the header is still not-complete,
// since both mean "nothing more to read right now" to the caller; the two
// are distinguished via AtEOF.
func (r *Reader) Next() (*ReadingContext, error) {
	if r.buf.Len()-r.pos < HeaderSize {
		return nil, nil
	}
	raw, err := r.buf.ReadAt(r.pos, HeaderSize)
	if err != nil {
		return nil, err
	}
	header := ParseHeader(raw)
	if header.IsNotComplete() {
		return nil, nil
	}

	rc := &ReadingContext{Header: header, pos: r.pos, payload: r.pos + HeaderSize}
	if rc.NextPos() > r.buf.Len() {
		return nil, wireutil.ErrTruncation
	}
	r.pos = rc.NextPos()
	return rc, nil
}

// AtEOF reports whether fewer than HeaderSize bytes remain unread, i.e.
// there is structurally no header left to parse.
func (r *Reader) AtEOF() bool { return r.buf.Len()-r.pos < HeaderSize }
