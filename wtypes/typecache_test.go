// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wtypes

import (
	"reflect"
	"testing"
)

type embeddedBase struct {
	Base string
}

type sample struct {
	embeddedBase
	Name      string `wire:"NAME,leaf"`
	Count     int32
	Hidden    string `wire:"-"`
	unexp     string
	Children  []sample
	ByteSlice []byte
}

func TestDescribeRecordFieldOrder(t *testing.T) {
	c := NewCache()
	d, err := c.Describe(reflect.TypeOf(sample{}))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if d.Kind != KindRecord {
		t.Fatalf("expected KindRecord, got %v", d.Kind)
	}

	names := make([]string, len(d.Container.Fields))
	for i, f := range d.Container.Fields {
		names[i] = f.Name
	}
	want := []string{"Base", "NAME", "Count", "Children", "ByteSlice"}
	if len(names) != len(want) {
		t.Fatalf("field names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("field[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDescribeLeafFlag(t *testing.T) {
	c := NewCache()
	d, err := c.Describe(reflect.TypeOf(sample{}))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	for _, f := range d.Container.Fields {
		if f.Name == "NAME" && !f.IsLeaf() {
			t.Errorf("NAME field should carry the leaf flag")
		}
	}
}

func TestDescribeByteSliceIsBytes(t *testing.T) {
	c := NewCache()
	d, err := c.Describe(reflect.TypeOf(sample{}))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	for _, f := range d.Container.Fields {
		if f.Name == "ByteSlice" && f.Type.Kind != KindBytes {
			t.Errorf("ByteSlice field kind = %v, want KindBytes", f.Type.Kind)
		}
	}
}

func TestDescribeRecursiveRecord(t *testing.T) {
	c := NewCache()
	d, err := c.Describe(reflect.TypeOf(sample{}))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	for _, f := range d.Container.Fields {
		if f.Name == "Children" {
			if f.Type.Kind != KindCollection {
				t.Fatalf("Children kind = %v, want KindCollection", f.Type.Kind)
			}
			if f.Type.Elem.Kind != KindRecord {
				t.Fatalf("Children elem kind = %v, want KindRecord", f.Type.Elem.Kind)
			}
		}
	}
}

func TestDescribeCached(t *testing.T) {
	c := NewCache()
	d1, _ := c.Describe(reflect.TypeOf(sample{}))
	d2, _ := c.Describe(reflect.TypeOf(sample{}))
	if d1 != d2 {
		t.Errorf("Describe should return the same cached descriptor instance")
	}
}

type withWireTypeTag struct {
	When any `wire-type:"localdate"`
}

func TestWireTypeTagOverride(t *testing.T) {
	c := NewCache()
	d, err := c.Describe(reflect.TypeOf(withWireTypeTag{}))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if d.Container.Fields[0].Type.Kind != KindLocalDate {
		t.Errorf("kind override = %v, want KindLocalDate", d.Container.Fields[0].Type.Kind)
	}
}
