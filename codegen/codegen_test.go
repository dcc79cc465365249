// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0

package codegen

import (
	"strings"
	"testing"
)

func TestGenerateDomainFixture(t *testing.T) {
	src, err := Generate("github.com/wirefmt/wire/codegen/fixtures/domain", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := string(src)
	for _, want := range []string{
		"package domain",
		"func init()",
		"wtypes.DefaultCache()",
		"reflect.TypeOf(Customer{})",
		"reflect.TypeOf(Order{})",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("generated source missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateOutPackageOverride(t *testing.T) {
	src, err := Generate("github.com/wirefmt/wire/codegen/fixtures/domain", Options{OutPackage: "generated"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(string(src), "package generated") {
		t.Fatalf("OutPackage override not honored:\n%s", src)
	}
}

func TestGenerateUnknownPackage(t *testing.T) {
	if _, err := Generate("github.com/wirefmt/wire/codegen/fixtures/does-not-exist", Options{}); err == nil {
		t.Fatal("expected an error loading a nonexistent package")
	}
}

func TestGenerateIntoWtypesItself(t *testing.T) {
	src, err := Generate("github.com/wirefmt/wire/wtypes", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := string(src)
	if strings.Contains(out, "\"github.com/wirefmt/wire/wtypes\"") {
		t.Fatalf("generating into wtypes itself must not self-import:\n%s", out)
	}
	if !strings.Contains(out, "DefaultCache().Describe") {
		t.Fatalf("expected an unqualified DefaultCache call:\n%s", out)
	}
}
