// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0

// Package domain is a small fixture used only by codegen_test.go to
// exercise codegen.Generate against a real, loadable package; it is not
// part of the wire engine itself.
package domain

// Order is a flat record with no nested types, the simplest shape
// codegen.Generate has to describe.
type Order struct {
	ID     string
	Amount int64
}

// Customer sits alongside Order in the same package, so a single
// Generate call has more than one init registration to emit.
type Customer struct {
	Name  string
	Email string
}
