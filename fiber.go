// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork

import (
	"context"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiberwork/drift"
	"code.hybscloud.com/fiberwork/scope"
)

// fiberState tracks a fiber's position in its life cycle (§3 "fiber").
type fiberState int32

const (
	fiberFree fiberState = iota
	// fiberReady holds a freshly assigned WorkItem that has never run;
	// the next worker to dequeue it must call start, not resume.
	fiberReady
	// fiberRunnable was parked and has been requeued after its chain
	// fired (or an immediate yield(nil) requeue); the next worker to
	// dequeue it must call resume, not start.
	fiberRunnable
	fiberRunning
	fiberWaiting
)

// fiber is a unit of stack-switchable execution. The original engine gives
// each fiber its own native stack and switches onto it from a worker
// thread; Go provides neither a portable nor a safe way to switch stacks
// under a running goroutine, so each fiber here owns a dedicated,
// long-lived goroutine of its own instead, and "switching into" a fiber
// means handing a resumeMsg to that goroutine over resumeCh and blocking
// for its reply on outcomeCh (§0). The fiber goroutine outlives any single
// work item: once a work item finishes, the goroutine loops back around
// and waits for the pool to hand it another one.
type fiber struct {
	index  int
	engine *Engine

	resumeCh  chan resumeMsg
	outcomeCh chan outcome

	drift *drift.Allocator
	scope *scope.Scope

	state      atomix.Int32
	hostWorker atomix.Int32

	// waiterNext links this fiber into a Chain's intrusive waiter list
	// (see chain.go). Only ever touched while the fiber is parked.
	waiterNext atomix.Uintptr

	item  WorkItem
	chain *Chain
}

// resumeMsg is sent on resumeCh to run or resume a fiber.
type resumeMsg struct {
	// item is set only the first time a freshly pooled fiber is resumed;
	// subsequent resumes (after a Yield) carry a zero item and simply
	// unblock the fiber's pending Yield call.
	item    WorkItem
	start   bool
	worker  int
}

// outcomeKind classifies why a fiber goroutine gave control back to its
// host worker.
type outcomeKind int8

const (
	outcomeYielded outcomeKind = iota
	outcomeFinished
)

type outcome struct {
	kind outcomeKind
}

func newFiber(index int, e *Engine, stackHint int) *fiber {
	if stackHint <= 0 {
		stackHint = e.cfg.DefaultStackSize
	}
	f := &fiber{
		index:     index,
		engine:    e,
		resumeCh:  make(chan resumeMsg),
		outcomeCh: make(chan outcome),
		drift:     drift.New(stackHint),
		scope:     scope.New(),
	}
	f.state.StoreRelease(int32(fiberFree))
	go f.loop()
	return f
}

// loop is the fiber's body goroutine. It blocks waiting to be started,
// runs the work item's Fn to completion (Fn may call Yield any number of
// times from anywhere in its call stack), then reports back and waits to
// be recycled.
func (f *fiber) loop() {
	for msg := range f.resumeCh {
		if !msg.start {
			// Spurious resume with no pending Yield: a programming error
			// in the scheduler itself, not in user code.
			assertf(f.engine.cfg.AssertSink, "fiber %d resumed without a pending start", f.index)
			continue
		}
		f.item = msg.item
		f.hostWorker.StoreRelease(int32(msg.worker))

		h := &Handle{f: f}
		ctx := withHandle(context.Background(), h)
		f.runItem(ctx)

		f.outcomeCh <- outcome{kind: outcomeFinished}
	}
}

func (f *fiber) runItem(ctx context.Context) {
	defer func() {
		f.scope.Run()
		f.drift.Reset()
	}()
	f.item.Fn(ctx, f.item.Data)
}

// yield suspends the fiber until woken by the scheduler (either because
// the chain it parked on fired, or immediately, for yield(nil)). Called
// from deep within the running WorkFunc's call stack, never from the
// worker's own goroutine.
func (f *fiber) yield(worker int) {
	f.hostWorker.StoreRelease(int32(worker))
	f.outcomeCh <- outcome{kind: outcomeYielded}
	msg := <-f.resumeCh
	f.hostWorker.StoreRelease(int32(msg.worker))
}

// start hands a fresh work item to a pooled, idle fiber and returns once
// the fiber either yields or finishes.
func (f *fiber) start(item WorkItem, worker int) outcome {
	f.resumeCh <- resumeMsg{item: item, start: true, worker: worker}
	return <-f.outcomeCh
}

// resume wakes a previously yielded fiber and returns once it yields again
// or finishes.
func (f *fiber) resume(worker int) outcome {
	f.resumeCh <- resumeMsg{worker: worker}
	return <-f.outcomeCh
}
