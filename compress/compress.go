// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

// Package compress is the compression hook named by the wire's
// CompressedBlob emitter/puller (§4.1, §4.8): a codec is resolved by name
// at the point a blob is written or read, exactly as the teacher's
// options.go resolves a pluggable hasher by name. Grounded on
// compress/gzip and compress/lzw from the standard library, named in
// SPEC_FULL's [DOMAIN STACK] as the stdlib collaborators satisfying the
// spec's "by type name" external compressor contract.
package compress

import (
	"bytes"
	"compress/gzip"
	"compress/lzw"
	"fmt"
	"io"
)

// ErrUnknownCodec is returned by Lookup for a codec name the registry has
// no implementation for.
var ErrUnknownCodec = fmt.Errorf("compress: unknown codec")

// Codec compresses and decompresses opaque byte payloads under one name.
type Codec interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

type gzipCodec struct{}

func (gzipCodec) Name() string { return "gzip" }

func (gzipCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compress: gzip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: gzip: %w", err)
	}
	return buf.Bytes(), nil
}

func (gzipCodec) Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("compress: gzip: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("compress: gzip: %w", err)
	}
	return out, nil
}

type lzwCodec struct{}

func (lzwCodec) Name() string { return "lzw" }

func (lzwCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lzw.NewWriter(&buf, lzw.MSB, 8)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compress: lzw: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: lzw: %w", err)
	}
	return buf.Bytes(), nil
}

func (lzwCodec) Decompress(data []byte) ([]byte, error) {
	zr := lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("compress: lzw: %w", err)
	}
	return out, nil
}

// unimplementedCodec registers a known codec name the registry cannot
// actually perform, so Lookup distinguishes "no such codec" from
// "named, but not wired" - see DESIGN.md for why snappy has no backing
// library in this pack.
type unimplementedCodec struct{ name string }

func (u unimplementedCodec) Name() string { return u.name }
func (u unimplementedCodec) Compress([]byte) ([]byte, error) {
	return nil, fmt.Errorf("%w: %s is registered but not implemented", ErrUnknownCodec, u.name)
}
func (u unimplementedCodec) Decompress([]byte) ([]byte, error) {
	return nil, fmt.Errorf("%w: %s is registered but not implemented", ErrUnknownCodec, u.name)
}

var registry = map[string]Codec{
	"gzip":   gzipCodec{},
	"lzw":    lzwCodec{},
	"snappy": unimplementedCodec{name: "snappy"},
}

// Lookup resolves a codec by the name carried on the wire's compressed
// blob (the codec string written alongside the base64/varint-length
// payload). Unknown names fail with ErrUnknownCodec.
func Lookup(name string) (Codec, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
	}
	return c, nil
}

// Register adds or replaces a codec under name, letting a caller supply
// its own compressor (e.g. snappy) without modifying this package.
func Register(c Codec) { registry[c.Name()] = c }
