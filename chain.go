// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// firedSentinel marks a chain's waiter-list head as already fired: any
// fiber that races to append itself after this point must be re-enqueued
// immediately instead of parked (§4.5).
const firedSentinel = ^uintptr(0)

// Chain is a reference-counted completion counter bound to one submission
// batch (§3 "Completion chain"). [Engine.Submit] returns a Chain; a fiber
// parks on it via [Engine.Yield] and resumes once every submitted work
// item in the batch has returned.
//
// Chain is heap-allocated once per live batch but pooled across batches to
// keep Submit/Yield allocation-free on the hot path (§1 non-goal: "dynamic
// memory allocation inside the hot path of submit/yield").
type Chain struct {
	pending     atomix.Int64
	waitersHead atomix.Uintptr
	generation  atomix.Uint64
}

// reset reinitializes a pooled chain for a new batch of n work items,
// bumping its generation so that any Chain pointer captured before this
// reuse is distinguishable from the current one: debug builds that retain
// a *Chain past its firing can compare [Chain.Generation] against a value
// they recorded earlier to detect the use-after-reuse rather than reading
// silently-wrong state from a chain the pool has already recycled.
func (c *Chain) reset(n int64) {
	c.pending.StoreRelease(n)
	c.waitersHead.StoreRelease(0)
	c.generation.AddAcqRel(1)
}

// Generation returns the chain's reuse counter: it increments every time
// the chain is handed out by [Engine.Submit] for a new batch. Compare two
// readings of Generation taken across a suspected chain-pool recycling to
// tell whether a retained *Chain still refers to the batch it was
// originally returned for.
func (c *Chain) Generation() uint64 {
	return c.generation.LoadAcquire()
}

// done reports whether the chain has already fired (pending reached zero).
// Used by [Engine.Yield] to detect and assert against re-yielding on an
// already-completed chain (§4.4: "yielding on the same chain again is a
// programming error").
func (c *Chain) done() bool {
	return c.waitersHead.LoadAcquire() == firedSentinel
}

// appendWaiter pushes f onto the chain's waiter list. Returns false if the
// chain had already fired by the time the append was attempted — the
// caller must treat this as "already ready" and not park the fiber.
func (c *Chain) appendWaiter(f *fiber) bool {
	for {
		head := c.waitersHead.LoadAcquire()
		if head == firedSentinel {
			return false
		}
		f.waiterNext.StoreRelease(head)
		if c.waitersHead.CompareAndSwapAcqRel(head, uintptr(unsafe.Pointer(f))) {
			return true
		}
	}
}

// decrement drops the pending count by one. When the count reaches zero it
// atomically detaches the waiter list (fencing off any late appendWaiter
// with firedSentinel, per §4.5) and returns the parked fibers in LIFO
// order, ready: true. Until then it returns ready: false.
func (c *Chain) decrement() (waiters []*fiber, ready bool) {
	if c.pending.AddAcqRel(-1) != 0 {
		return nil, false
	}

	var head uintptr
	for {
		head = c.waitersHead.LoadAcquire()
		if c.waitersHead.CompareAndSwapAcqRel(head, firedSentinel) {
			break
		}
	}

	for cur := head; cur != 0; {
		f := (*fiber)(unsafe.Pointer(cur))
		waiters = append(waiters, f)
		cur = f.waiterNext.LoadAcquire()
	}
	return waiters, true
}

// Pending returns the current count of work items not yet finished. It is
// informational only: by the time it returns, the value may already be
// stale.
func (c *Chain) Pending() int64 {
	return c.pending.LoadAcquire()
}
