// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wiretext_test

import (
	"testing"

	"github.com/wirefmt/wire/buffer"
	"github.com/wirefmt/wire/valueio"
	"github.com/wirefmt/wire/wiretext"
)

// TestStringMapDocument is scenario S3: a LinkedHashMap-shaped value
// written under the root field name "example" must render as
//
//	--- !!data
//	example: {
//	  hello: world,
//	  hello1: world1,
//	  hello2: world2
//	}
func TestStringMapDocument(t *testing.T) {
	buf := buffer.NewGrowable(256)
	w := wiretext.NewWriter(buf, false)
	w.WriteDocumentMarker(false)
	w.Field("example", func(v valueio.ValueOut) {
		v.Map(func(entries valueio.ValueOut) {
			entries.Field("hello", func(ev valueio.ValueOut) { ev.Text("world") })
			entries.Field("hello1", func(ev valueio.ValueOut) { ev.Text("world1") })
			entries.Field("hello2", func(ev valueio.ValueOut) { ev.Text("world2") })
		})
	})

	want := "--- !!data\n" +
		"example: {\n" +
		"  hello: world,\n" +
		"  hello1: world1,\n" +
		"  hello2: world2\n" +
		"}"
	got := string(buf.Bytes())
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestStringMapRoundTrip(t *testing.T) {
	buf := buffer.NewGrowable(256)
	w := wiretext.NewWriter(buf, false)
	w.WriteDocumentMarker(false)
	w.Field("example", func(v valueio.ValueOut) {
		v.Map(func(entries valueio.ValueOut) {
			entries.Field("hello", func(ev valueio.ValueOut) { ev.Text("world") })
			entries.Field("hello1", func(ev valueio.ValueOut) { ev.Text("world1") })
		})
	})

	r := wiretext.NewReader(buf, 0)
	if _, err := r.ReadDocumentMarker(); err != nil {
		t.Fatalf("ReadDocumentMarker: %v", err)
	}
	name, ok := r.NextRootField()
	if !ok || name != "example" {
		t.Fatalf("NextRootField = %q, %v", name, ok)
	}
	got := map[string]string{}
	if err := r.Map(func(key string, v valueio.ValueIn) error {
		s, err := v.Text()
		if err != nil {
			return err
		}
		got[key] = s
		return nil
	}); err != nil {
		t.Fatalf("Map: %v", err)
	}
	want := map[string]string{"hello": "world", "hello1": "world1"}
	if len(got) != len(want) || got["hello"] != want["hello"] || got["hello1"] != want["hello1"] {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestScalarQuoting covers bare vs. quoted token selection (§4.3).
func TestScalarQuoting(t *testing.T) {
	cases := []struct {
		in   string
		bare bool
	}{
		{"hello", true},
		{"", false},
		{"123abc", false},
		{"has space", true},
		{"a:b", false},
		{"plain_token", true},
	}
	for _, c := range cases {
		buf := buffer.NewGrowable(64)
		w := wiretext.NewWriter(buf, false)
		w.Text(c.in)
		out := string(buf.Bytes())
		isBare := len(out) > 0 && out[0] != '"' && out[0] != '\''
		if isBare != c.bare {
			t.Errorf("Text(%q) -> %q, bare = %v, want %v", c.in, out, isBare, c.bare)
		}
	}
}

// TestCompositeRecordTextRoundTrip is scenario S1: a record with a plain
// multi-word text field must render the field bare, not quoted, and the
// exact literal block must round-trip back to an equal record.
func TestCompositeRecordTextRoundTrip(t *testing.T) {
	buf := buffer.NewGrowable(256)
	w := wiretext.NewWriter(buf, false)
	w.Field("A", func(v valueio.ValueOut) {
		v.Record(func(inner valueio.ValueOut) {
			inner.Field("B_FLAG", func(fv valueio.ValueOut) { fv.Bool(true) })
			inner.Field("S_NUM", func(fv valueio.ValueOut) { fv.Int32(12345) })
			inner.Field("D_NUM", func(fv valueio.ValueOut) { fv.Float64(123.456) })
			inner.Field("L_NUM", func(fv valueio.ValueOut) { fv.Int64(0) })
			inner.Field("I_NUM", func(fv valueio.ValueOut) { fv.Int64(-12345789) })
			inner.Field("TEXT", func(fv valueio.ValueOut) { fv.Text("Hello World") })
		})
	})

	want := "A: {\n" +
		"  B_FLAG: true,\n" +
		"  S_NUM: 12345,\n" +
		"  D_NUM: 123.456,\n" +
		"  L_NUM: 0,\n" +
		"  I_NUM: -12345789,\n" +
		"  TEXT: Hello World\n" +
		"}"
	got := string(buf.Bytes())
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	r := wiretext.NewReader(buf, 0)
	name, ok := r.NextRootField()
	if !ok || name != "A" {
		t.Fatalf("NextRootField = %q, %v", name, ok)
	}
	var gotText string
	if err := r.Record(func(inner valueio.ValueIn) error {
		for {
			fname, ok := inner.NextField()
			if !ok {
				return nil
			}
			if fname == "TEXT" {
				s, err := inner.Text()
				if err != nil {
					return err
				}
				gotText = s
				continue
			}
			if err := inner.Skip(); err != nil {
				return err
			}
		}
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if gotText != "Hello World" {
		t.Errorf("TEXT = %q, want %q", gotText, "Hello World")
	}
}

func TestScalarRoundTrip(t *testing.T) {
	buf := buffer.NewGrowable(64)
	w := wiretext.NewWriter(buf, false)
	w.Record(func(inner valueio.ValueOut) {
		inner.Field("Name", func(v valueio.ValueOut) { v.Text("has space, and: colon") })
		inner.Field("Count", func(v valueio.ValueOut) { v.Int32(-7) })
	})

	r := wiretext.NewReader(buf, 0)
	var gotName string
	var gotCount int32
	if err := r.Record(func(inner valueio.ValueIn) error {
		for {
			name, ok := inner.NextField()
			if !ok {
				return nil
			}
			switch name {
			case "Name":
				s, err := inner.Text()
				if err != nil {
					return err
				}
				gotName = s
			case "Count":
				v, err := inner.Int32()
				if err != nil {
					return err
				}
				gotCount = v
			default:
				if err := inner.Skip(); err != nil {
					return err
				}
			}
		}
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if gotName != "has space, and: colon" {
		t.Errorf("Name = %q", gotName)
	}
	if gotCount != -7 {
		t.Errorf("Count = %d", gotCount)
	}
}

func TestReferenceCellRoundTrip(t *testing.T) {
	buf := buffer.NewGrowable(64)
	w := wiretext.NewWriter(buf, false)
	ref := w.Int64Reference(10)
	if got := ref.Get(); got != 10 {
		t.Fatalf("Get() = %d, want 10", got)
	}
	if !ref.CompareAndSwap(10, 42) {
		t.Fatalf("CompareAndSwap failed")
	}
	if got := ref.Get(); got != 42 {
		t.Errorf("Get() after CAS = %d, want 42", got)
	}

	r := wiretext.NewReader(buf, 0)
	readRef, err := r.Int64Reference()
	if err != nil {
		t.Fatalf("Int64Reference: %v", err)
	}
	if got := readRef.Get(); got != 42 {
		t.Errorf("reader-side Get() = %d, want 42", got)
	}
}

func TestNullRoundTrip(t *testing.T) {
	buf := buffer.NewGrowable(32)
	w := wiretext.NewWriter(buf, false)
	w.Null()

	r := wiretext.NewReader(buf, 0)
	if !r.IsNull() {
		t.Fatalf("IsNull() = false, want true")
	}
	if err := r.Null(); err != nil {
		t.Fatalf("Null(): %v", err)
	}
}
