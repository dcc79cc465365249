// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wire

import (
	"fmt"
	"reflect"

	"github.com/wirefmt/wire/strategy"
	"github.com/wirefmt/wire/wtypes"
)

// Options holds a Wire's per-instance configuration (§6): functional
// options built on top of the engine-wide descriptor cache/strategy
// table, mirroring the teacher's two-layer `DynSszOption` / per-call
// option design (options.go).
type Options struct {
	// FieldLess selects the binary-fieldless behavior directly, independent
	// of WireType: omit field names/IDs entirely and match fields
	// positionally by declaration order.
	FieldLess bool
	// NumericID enables the `numeric_id` option: a field carrying a
	// `wire-id` struct tag is written under its decimal numeric ID rather
	// than its name.
	NumericID bool
	// CompressionThreshold is the minimum encoded payload size, in bytes,
	// below which a `compressed-binary` Wire skips compression and stores
	// the payload as-is (cheap insurance against expanding tiny documents).
	CompressionThreshold int
	// CompressionCodec names the compress.Codec a `compressed-binary` Wire
	// uses to compress each whole document payload.
	CompressionCodec string
	// Use8BitText mirrors the text encoding's `use_8bit_text` option.
	Use8BitText bool
	// ClassAliasRegistry maps a wire-visible type name to a concrete Go
	// type. It is carried in the options only: no reader consults it, and
	// ValueIn.Object does not resolve type tags to Go types.
	ClassAliasRegistry map[string]reflect.Type
	// LogCb is the pluggable log callback (teacher's DynSszOptions.LogCb),
	// defaulting to fmt.Printf.
	LogCb func(format string, args ...any)
	// Verbose gates logging through LogCb; when set, Marshal logs one line
	// per sealed document.
	Verbose bool
	// Types is the descriptor cache the reflective marshaller uses; nil
	// selects wtypes.DefaultCache().
	Types *wtypes.Cache
	// Strategies is the strategy table; nil selects strategy.Default().
	Strategies *strategy.Registry
}

func defaultOptions() Options {
	return Options{
		CompressionThreshold: 256,
		CompressionCodec:     "gzip",
		LogCb:                func(format string, args ...any) { fmt.Printf(format+"\n", args...) },
	}
}

// Option configures a Wire at construction time.
type Option func(*Options)

// WithFieldLess sets the FieldLess option.
func WithFieldLess(v bool) Option { return func(o *Options) { o.FieldLess = v } }

// WithNumericID sets the NumericID option.
func WithNumericID(v bool) Option { return func(o *Options) { o.NumericID = v } }

// WithCompressionThreshold sets CompressionThreshold.
func WithCompressionThreshold(n int) Option { return func(o *Options) { o.CompressionThreshold = n } }

// WithCompressionCodec sets CompressionCodec (resolved via package compress).
func WithCompressionCodec(name string) Option {
	return func(o *Options) { o.CompressionCodec = name }
}

// WithUse8BitText sets Use8BitText.
func WithUse8BitText(v bool) Option { return func(o *Options) { o.Use8BitText = v } }

// WithClassAliasRegistry sets the ClassAliasRegistry.
func WithClassAliasRegistry(reg map[string]reflect.Type) Option {
	return func(o *Options) { o.ClassAliasRegistry = reg }
}

// WithLogCb overrides the log callback.
func WithLogCb(cb func(format string, args ...any)) Option {
	return func(o *Options) { o.LogCb = cb }
}

// WithVerbose toggles verbose trace logging.
func WithVerbose(v bool) Option { return func(o *Options) { o.Verbose = v } }

// WithTypeCache binds a specific descriptor cache instead of the
// process-wide default, letting independent Wires isolate their
// descriptor state (useful in tests).
func WithTypeCache(c *wtypes.Cache) Option { return func(o *Options) { o.Types = c } }

// WithStrategies binds a specific strategy table instead of the
// process-wide default.
func WithStrategies(s *strategy.Registry) Option { return func(o *Options) { o.Strategies = s } }
