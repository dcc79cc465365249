// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0

// Package codegen implements the engine's build-time descriptor generator:
// given a Go package import path it loads and type-checks that package
// (without invoking `go build`) and emits a small generated file that
// pre-registers every exported record type's wtypes.TypeDescriptor at
// program init, trading the first-call reflection cost of
// wtypes.Cache.Describe for an up-front one at process startup.
//
// This mirrors the shape of the teacher's dynssz-gen command - a separate
// tool that statically inspects a target package ahead of time rather than
// relying purely on runtime reflection - scaled down to the one concern
// this module's descriptor cache actually needs warmed: locating the
// record types, not generating their marshal/unmarshal bodies, since the
// reflective marshaller (package reflectmars) already does that at
// runtime and stays the single source of truth for wire layout.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/types"
	"sort"

	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax | packages.NeedImports

// Options configures a Generate call.
type Options struct {
	// OutPackage overrides the generated file's package clause; empty
	// means use the loaded package's own name, the common case of placing
	// the generated file alongside the types it describes.
	OutPackage string
}

// Generate loads the Go package at pattern (an import path or directory,
// the same syntax `go list` accepts), finds every exported struct type
// declared directly in it, and returns the source of a generated Go file
// whose init function registers each one's descriptor in
// wtypes.DefaultCache.
func Generate(pattern string, opts Options) ([]byte, error) {
	names, pkg, err := loadRecordTypes(pattern)
	if err != nil {
		return nil, err
	}

	outPkg := opts.OutPackage
	if outPkg == "" {
		outPkg = pkg.Name
	}
	return render(outPkg, names)
}

// loadRecordTypes loads pattern and returns the sorted names of its
// exported struct types, along with the loaded package for naming the
// generated file's own package clause.
func loadRecordTypes(pattern string) ([]string, *packages.Package, error) {
	cfg := &packages.Config{Mode: loadMode}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("codegen: loading %s: %w", pattern, err)
	}
	if len(pkgs) == 0 {
		return nil, nil, fmt.Errorf("codegen: no packages matched %s", pattern)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, nil, fmt.Errorf("codegen: %s failed to type-check", pattern)
	}
	pkg := pkgs[0]

	var names []string
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if obj == nil || !obj.Exported() {
			continue
		}
		tn, ok := obj.(*types.TypeName)
		if !ok {
			continue
		}
		if _, ok := tn.Type().Underlying().(*types.Struct); !ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("codegen: %s declares no exported struct types", pattern)
	}
	return names, pkg, nil
}

const wtypesPackage = "wtypes"

func render(outPkg string, names []string) ([]byte, error) {
	// Generating into the wtypes package itself would make the cache
	// import its own package; call DefaultCache unqualified in that case.
	cacheRef := "wtypes.DefaultCache()"
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by wiregen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", outPkg)
	if outPkg == wtypesPackage {
		cacheRef = "DefaultCache()"
		fmt.Fprintf(&buf, "import \"reflect\"\n\n")
	} else {
		fmt.Fprintf(&buf, "import (\n\t\"reflect\"\n\n\t\"github.com/wirefmt/wire/wtypes\"\n)\n\n")
	}
	fmt.Fprintf(&buf, "func init() {\n")
	for _, name := range names {
		fmt.Fprintf(&buf, "\tif _, err := %s.Describe(reflect.TypeOf(%s{})); err != nil {\n", cacheRef, name)
		fmt.Fprintf(&buf, "\t\tpanic(err)\n")
		fmt.Fprintf(&buf, "\t}\n")
	}
	fmt.Fprintf(&buf, "}\n")

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: formatting generated source: %w", err)
	}
	return out, nil
}
