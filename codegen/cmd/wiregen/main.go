// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0

// Command wiregen runs the engine's descriptor-warming generator against
// one package pattern and writes the result to a file inside it, the way
// the teacher's dynssz-gen command wraps its own codegen package behind a
// small CLI.
package main

import (
	"flag"
	"fmt"
	"go/build"
	"os"
	"path/filepath"

	"github.com/wirefmt/wire/codegen"
)

func main() {
	pattern := flag.String("package", "", "import path or directory of the package to generate descriptors for")
	out := flag.String("out", "wiregen.go", "output file name, written inside the target package's directory")
	outPkg := flag.String("out-package", "", "override the generated file's package clause (default: the target package's own name)")
	flag.Parse()

	if *pattern == "" {
		fmt.Fprintln(os.Stderr, "wiregen: -package is required")
		os.Exit(1)
	}

	src, err := codegen.Generate(*pattern, codegen.Options{OutPackage: *outPkg})
	if err != nil {
		fmt.Fprintln(os.Stderr, "wiregen:", err)
		os.Exit(1)
	}

	dir, err := packageDir(*pattern)
	if err != nil {
		fmt.Fprintln(os.Stderr, "wiregen:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(dir, *out), src, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "wiregen:", err)
		os.Exit(1)
	}
}

// packageDir resolves pattern to a directory, accepting both an import
// path and a plain relative/absolute directory, the same two forms `go
// generate` lines pass their tool.
func packageDir(pattern string) (string, error) {
	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		return pattern, nil
	}
	pkg, err := build.Import(pattern, ".", build.FindOnly)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", pattern, err)
	}
	return pkg.Dir, nil
}
