// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// SpinLock is a test-and-set (compare-and-swap) mutual exclusion primitive for the
// rare call site that needs to guard a short critical section shared by
// fibers running on different workers without involving the scheduler
// (§5 "Spin lock"). It is not reentrant; locking twice from the same
// fiber deadlocks it, and unlocking an unlocked SpinLock is a programming
// error reported through the engine's [AssertSink].
//
// The zero value is an unlocked SpinLock.
type SpinLock struct {
	locked atomix.Bool
	sink   AssertSink
}

// NewSpinLock returns a SpinLock that reports misuse (a double unlock)
// through sink. A nil sink uses [DefaultAssertSink].
func NewSpinLock(sink AssertSink) *SpinLock {
	if sink == nil {
		sink = DefaultAssertSink{}
	}
	return &SpinLock{sink: sink}
}

// Lock blocks, spinning, until the lock is acquired.
func (l *SpinLock) Lock() {
	sw := spin.Wait{}
	for !l.TryLock() {
		sw.Once()
	}
}

// TryLock attempts to acquire the lock without blocking and reports
// whether it succeeded.
func (l *SpinLock) TryLock() bool {
	return l.locked.CompareAndSwapAcqRel(false, true)
}

// Unlock releases the lock. Unlocking an already-unlocked SpinLock is
// reported to the configured [AssertSink].
func (l *SpinLock) Unlock() {
	if !l.locked.CompareAndSwapAcqRel(true, false) {
		sink := l.sink
		if sink == nil {
			sink = DefaultAssertSink{}
		}
		assertf(sink, "fiberwork: unlock of an unlocked SpinLock")
	}
}

// Guard acquires the lock, runs fn, and releases the lock once fn
// returns, including when fn panics — the scoped variant of Lock/Unlock
// (§5 "Spin lock") for the common case of guarding a single block rather
// than matching Lock/Unlock calls by hand.
func (l *SpinLock) Guard(fn func()) {
	l.Lock()
	defer l.Unlock()
	fn()
}
