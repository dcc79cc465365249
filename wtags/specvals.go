// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

// Package wtags resolves the `wire-size` struct tag: a govaluate
// expression, evaluated against a caller-supplied map of named spec
// values, that bounds a sequence/array field's declared size. This is
// the SPEC_FULL domain-stack home for github.com/casbin/govaluate,
// grounded on the teacher's sizehints.go/specvals.go ("dynssz-size"
// expressions resolved against a spec-value map).
package wtags

import (
	"fmt"

	"github.com/casbin/govaluate"
)

// SpecValues resolves named spec values (e.g. "MAX_ITEMS") used inside
// `wire-size` tag expressions, and caches each expression's resolved
// value, keyed by the expression string.
type SpecValues struct {
	values map[string]any
	cache  map[string]*cachedValue
}

type cachedValue struct {
	resolved bool
	value    uint64
}

// NewSpecValues creates a resolver over the given named values.
func NewSpecValues(values map[string]any) *SpecValues {
	return &SpecValues{
		values: values,
		cache:  make(map[string]*cachedValue),
	}
}

// Resolve evaluates expr (a bare spec-value name or a govaluate
// expression combining several, e.g. "MAX_ITEMS*2") against the resolver's
// value map. resolved is false when expr references a name the resolver
// does not have a value for, in which case the caller falls back to
// whatever static size a field's `wire-size` alternative specifies.
func (s *SpecValues) Resolve(expr string) (resolved bool, value uint64, err error) {
	if cached := s.cache[expr]; cached != nil {
		return cached.resolved, cached.value, nil
	}

	cached := &cachedValue{}
	evaluable, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return false, 0, fmt.Errorf("wtags: parsing size expression %q: %w", expr, err)
	}

	result, err := evaluable.Evaluate(s.values)
	if err == nil {
		if f, ok := result.(float64); ok {
			cached.resolved = true
			cached.value = uint64(f)
			if float64(cached.value) < f {
				cached.value++
			}
		}
	}

	s.cache[expr] = cached
	return cached.resolved, cached.value, nil
}
