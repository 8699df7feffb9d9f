// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork

import "testing"

func TestChainDecrementToZero(t *testing.T) {
	c := &Chain{}
	c.reset(3)

	if _, ready := c.decrement(); ready {
		t.Fatal("ready after first decrement of 3")
	}
	if _, ready := c.decrement(); ready {
		t.Fatal("ready after second decrement of 3")
	}
	waiters, ready := c.decrement()
	if !ready {
		t.Fatal("not ready after third decrement of 3")
	}
	if len(waiters) != 0 {
		t.Fatalf("waiters = %v, want none (none were ever appended)", waiters)
	}
	if !c.done() {
		t.Fatal("done() should report true once fired")
	}
}

func TestChainAppendWaiterAfterFireFails(t *testing.T) {
	c := &Chain{}
	c.reset(1)
	c.decrement() // fires immediately

	f := &fiber{}
	if c.appendWaiter(f) {
		t.Fatal("appendWaiter on an already-fired chain should return false")
	}
}

func TestChainAppendWaiterBeforeFire(t *testing.T) {
	c := &Chain{}
	c.reset(2)

	f1 := &fiber{index: 1}
	f2 := &fiber{index: 2}
	if !c.appendWaiter(f1) {
		t.Fatal("appendWaiter before fire should succeed")
	}
	if !c.appendWaiter(f2) {
		t.Fatal("appendWaiter before fire should succeed")
	}

	c.decrement()
	waiters, ready := c.decrement()
	if !ready {
		t.Fatal("expected chain to fire on second decrement")
	}
	if len(waiters) != 2 {
		t.Fatalf("waiters = %d, want 2", len(waiters))
	}
}

func TestChainGenerationIncrementsOnReuse(t *testing.T) {
	c := &Chain{}
	c.reset(1)
	g1 := c.Generation()

	c.decrement()
	c.reset(1) // simulates the chain pool handing c out for a new batch
	g2 := c.Generation()

	if g2 == g1 {
		t.Fatalf("Generation() did not change across reuse: %d == %d", g1, g2)
	}
}
