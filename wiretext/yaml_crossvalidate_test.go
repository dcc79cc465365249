// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the wire serialization engine.

package wiretext_test

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/wirefmt/wire/buffer"
	"github.com/wirefmt/wire/valueio"
	"github.com/wirefmt/wire/wiretext"
)

// TestStringMapCrossValidatesWithYAMLv3 is scenario S3's map, decoded a
// second way: once the non-standard `--- !!data` marker line is
// stripped, the remaining flow-style output is plain YAML, and
// gopkg.in/yaml.v3 must agree with both the literal expected values and
// our own Reader.
func TestStringMapCrossValidatesWithYAMLv3(t *testing.T) {
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

	out := string(buf.Bytes())
	body := strings.TrimPrefix(out, "--- !!data\n")
	if body == out {
		t.Fatalf("expected a --- !!data marker prefix, got:\n%s", out)
	}

	var viaYAML map[string]map[string]string
	if err := yaml.Unmarshal([]byte(body), &viaYAML); err != nil {
		t.Fatalf("yaml.v3 could not parse our own output: %v\n%s", err, body)
	}
	want := map[string]string{"hello": "world", "hello1": "world1", "hello2": "world2"}
	if len(viaYAML["example"]) != len(want) {
		t.Fatalf("yaml.v3 decode = %#v, want %#v", viaYAML["example"], want)
	}
	for k, v := range want {
		if viaYAML["example"][k] != v {
			t.Errorf("yaml.v3 decode[%q] = %q, want %q", k, viaYAML["example"][k], v)
		}
	}

	r := wiretext.NewReader(buf, 0)
	if _, err := r.ReadDocumentMarker(); err != nil {
		t.Fatalf("ReadDocumentMarker: %v", err)
	}
	name, ok := r.NextRootField()
	if !ok || name != "example" {
		t.Fatalf("NextRootField = %q, %v", name, ok)
	}
	viaReader := map[string]string{}
	if err := r.Map(func(key string, v valueio.ValueIn) error {
		s, err := v.Text()
		if err != nil {
			return err
		}
		viaReader[key] = s
		return nil
	}); err != nil {
		t.Fatalf("Map: %v", err)
	}
	for k, v := range want {
		if viaReader[k] != v {
			t.Errorf("our Reader[%q] = %q, want %q", k, viaReader[k], v)
		}
	}
}
