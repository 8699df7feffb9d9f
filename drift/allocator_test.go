// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package drift_test

import (
	"testing"

	"code.hybscloud.com/fiberwork/drift"
)

func TestAllocBasic(t *testing.T) {
	a := drift.New(256)
	b1 := a.Alloc(16, 8)
	b2 := a.Alloc(16, 8)
	if len(b1) != 16 || len(b2) != 16 {
		t.Fatalf("unexpected lengths: %d %d", len(b1), len(b2))
	}
	b1[0] = 1
	b2[0] = 2
	if b1[0] != 1 || b2[0] != 2 {
		t.Fatalf("allocations alias each other")
	}
}

// TestShiftUnshiftLifetime checks spec.md §8 property 7: a pointer
// returned between Shift and the matching Unshift is valid throughout,
// and boundaries nest correctly.
func TestShiftUnshiftLifetime(t *testing.T) {
	a := drift.New(64)

	a.Shift()
	outer := a.Alloc(8, 8)
	copy(outer, []byte("outerout"))

	a.Shift()
	inner := a.Alloc(8, 8)
	copy(inner, []byte("innerinn"))
	if string(outer) != "outerout" {
		t.Fatalf("outer corrupted before inner unshift: %q", outer)
	}
	a.Unshift()

	if a.Depth() != 1 {
		t.Fatalf("Depth after one unshift: got %d, want 1", a.Depth())
	}
	if string(outer) != "outerout" {
		t.Fatalf("outer corrupted by inner unshift: %q", outer)
	}

	a.Unshift()
	if a.Depth() != 0 {
		t.Fatalf("Depth after final unshift: got %d, want 0", a.Depth())
	}
}

func TestUnshiftCrossesBlockBoundary(t *testing.T) {
	a := drift.New(16)
	a.Shift()
	_ = a.Alloc(8, 8)
	_ = a.Alloc(64, 8) // forces a new block
	_ = a.Alloc(8, 8)
	a.Unshift()
	if a.Depth() != 0 {
		t.Fatalf("Depth: got %d, want 0", a.Depth())
	}
	// Allocator should still be usable after crossing block boundaries.
	b := a.Alloc(4, 4)
	if len(b) != 4 {
		t.Fatalf("Alloc after unshift: got len %d, want 4", len(b))
	}
}

func TestUnbalancedUnshiftPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unbalanced unshift")
		}
	}()
	a := drift.New(64)
	a.Unshift()
}

func TestResetReclaimsEverything(t *testing.T) {
	a := drift.New(16)
	a.Shift()
	_ = a.Alloc(64, 8)
	_ = a.Alloc(64, 8)
	a.Reset()
	if a.Depth() != 0 {
		t.Fatalf("Depth after Reset: got %d, want 0", a.Depth())
	}
	b := a.Alloc(8, 8)
	if len(b) != 8 {
		t.Fatalf("Alloc after Reset: got len %d, want 8", len(b))
	}
}
