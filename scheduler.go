// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork

import (
	"context"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiberwork/internal/queue"
	"code.hybscloud.com/iox"
)

// Engine is the job system's scheduler: a bounded ready ring, a pool of
// reusable fibers, a pool of reusable completion chains, and one worker
// per configured thread (§2 "System overview"). The zero Engine is not
// usable; construct one with [New].
type Engine struct {
	cfg Config

	readyRing *queue.Ring[*fiber]
	aggroRing *queue.Ring[*fiber]
	mainRing  *queue.MPSC[*fiber]

	fibers    []*fiber
	fiberFree *queue.Ring[*fiber]

	chainPool sync.Pool

	workers []*worker
	wg      sync.WaitGroup
	stopped atomix.Bool
}

// New constructs an Engine from cfg. Zero-valued fields in cfg are
// defaulted per [Config.normalize]. Workers are created but not started;
// call [Engine.Run] to start them and block the calling goroutine as
// worker 0.
func New(cfg Config) *Engine {
	cfg = cfg.normalize()

	e := &Engine{
		cfg:       cfg,
		readyRing: queue.NewRing[*fiber](cfg.readyCapacity()),
		aggroRing: queue.NewRing[*fiber](cfg.readyCapacity()),
		mainRing:  queue.NewMPSC[*fiber](cfg.readyCapacity()),
	}
	e.chainPool.New = func() any { return &Chain{} }

	e.fibers = make([]*fiber, cfg.FiberCount)
	e.fiberFree = queue.NewRing[*fiber](cfg.FiberCount)
	for i := range e.fibers {
		f := newFiber(i, e, cfg.DefaultStackSize)
		e.fibers[i] = f
		_ = e.fiberFree.Enqueue(f)
	}

	e.workers = make([]*worker, cfg.ThreadCount)
	for i := range e.workers {
		e.workers[i] = &worker{index: i, engine: e}
	}
	return e
}

// MainFunc is the engine's bootstrap entry point, run as main-affinity
// work on worker 0 once every worker is draining (§6, the analogue of the
// original engine's framework_main calling into the host application).
// Its ctx carries a fiber [Handle] like any [WorkFunc]'s, so it may call
// [Engine.Submit], [Engine.Yield], or [Engine.SubmitAndYield] directly.
type MainFunc func(ctx context.Context) int

// Run starts every worker (workers 1..N-1 on their own goroutines; worker
// 0 on the calling goroutine) and submits mainFn as the first unit of
// main-affinity work. Run blocks until mainFn returns and every worker has
// drained, then stops the engine and returns mainFn's exit code.
func (e *Engine) Run(mainFn MainFunc) int {
	var code int
	done := make(chan struct{})

	if _, err := e.Submit([]WorkItem{{
		Fn: func(ctx context.Context, _ any) {
			defer close(done)
			code = mainFn(ctx)
		},
		Class: ClassMainAffinity,
		Name:  "main",
	}}); err != nil {
		assertf(e.cfg.AssertSink, "fiberwork: failed to submit main entry point: %v", err)
	}

	for i := 1; i < len(e.workers); i++ {
		e.wg.Add(1)
		w := e.workers[i]
		go func() {
			defer e.wg.Done()
			w.run()
		}()
	}

	go func() {
		<-done
		e.Stop()
	}()

	e.workers[0].run()
	e.wg.Wait()
	return code
}

// Stop signals every worker to exit once its current fiber yields or
// finishes and no further work is runnable. Stop does not cancel
// in-flight work items; it only stops workers from picking up new ones.
func (e *Engine) Stop() {
	e.stopped.StoreRelease(true)
}

// Submit enqueues a batch of work items and returns a [Chain] that
// becomes ready once every item in the batch has returned (§4.4). Submit
// never suspends the caller's fiber (if any): it is safe to call from
// outside any fiber (e.g. from the goroutine that calls [Engine.Run]) or
// from within a running WorkFunc.
//
// An empty batch returns (nil, nil): no Chain is allocated for it, and
// passing that nil result to [Engine.Yield] requests a plain reschedule
// rather than a wait.
//
// If the fiber pool or a routing ring is momentarily exhausted, Submit
// retries with a relaxing [iox.Backoff] rather than failing: per spec.md
// §7, resource exhaustion on submit is backpressure, not an error. Submit
// only blocks the calling goroutine, never the rest of the engine, and
// always completes once some in-flight fiber frees up. Its error return
// is reserved for future use and is currently always nil.
func (e *Engine) Submit(items []WorkItem) (*Chain, error) {
	if len(items) == 0 {
		return nil, nil
	}

	chain := e.chainPool.Get().(*Chain)
	chain.reset(int64(len(items)))

	for i := range items {
		it := items[i]
		if it.Fn == nil {
			assertf(e.cfg.AssertSink, "fiberwork: submitted work item %q has a nil Fn", it.Name)
			continue
		}
		f := e.acquireFiber()
		if it.StackHint > 0 {
			f.drift.Reserve(it.StackHint)
		}
		f.item = it
		f.chain = chain
		f.state.StoreRelease(int32(fiberReady))
		e.enqueueFresh(f)
	}
	return chain, nil
}

// acquireFiber pops a free fiber from the pool, retrying with a relaxing
// backoff while the pool is momentarily empty (§1 non-goal: unbounded
// fiber growth — the pool is bounded by [Config.FiberCount] and Submit
// waits for one to free up rather than growing it).
func (e *Engine) acquireFiber() *fiber {
	bo := iox.Backoff{}
	for {
		if f, err := e.fiberFree.Dequeue(); err == nil {
			return f
		}
		bo.Wait()
	}
}

// enqueueFresh places a freshly assigned, never-yet-started fiber onto
// the ring its scheduling class routes to.
func (e *Engine) enqueueFresh(f *fiber) {
	e.routeByClass(f)
}

// requeue places an already-started fiber that just stopped waiting back
// onto the ring its scheduling class routes to, so it will be resumed
// rather than started (§4.3: main-affinity waiters are requeued onto
// worker 0's queue just as at initial submission).
func (e *Engine) requeue(f *fiber) {
	f.state.StoreRelease(int32(fiberRunnable))
	e.routeByClass(f)
}

// routeByClass enqueues f onto the ring its WorkItem.Class dictates:
// main-affinity work goes to worker 0's dedicated queue, aggressive work
// goes to a separate ring workers check before the shared one so it races
// against fewer CAS contenders, and everything else shares readyRing
// (§4.3). A momentarily full ring is retried with a relaxing backoff
// rather than surfaced as a failure, matching [Engine.acquireFiber] and
// spec.md §7's resource-exhaustion policy.
func (e *Engine) routeByClass(f *fiber) {
	var enqueue func() error
	switch f.item.Class {
	case ClassMainAffinity:
		enqueue = func() error { return e.mainRing.Enqueue(f) }
	case ClassAggressive:
		enqueue = func() error { return e.aggroRing.Enqueue(f) }
	default:
		enqueue = func() error { return e.readyRing.Enqueue(f) }
	}

	bo := iox.Backoff{}
	for enqueue() != nil {
		bo.Wait()
	}
}

// finishFiber runs when a fiber's WorkFunc has returned: it decrements the
// fiber's chain (waking any parked waiters) and returns the fiber to the
// free pool for reuse.
func (e *Engine) finishFiber(f *fiber) {
	chain := f.chain
	f.chain = nil
	f.item = WorkItem{}
	f.state.StoreRelease(int32(fiberFree))
	if err := e.fiberFree.Enqueue(f); err != nil {
		assertf(e.cfg.AssertSink, "fiberwork: fiber free-list overflow: %v", err)
	}

	if chain == nil {
		return
	}
	waiters, ready := chain.decrement()
	if !ready {
		return
	}
	for _, waiter := range waiters {
		e.requeue(waiter)
	}
	e.chainPool.Put(chain)
}

// Yield suspends the fiber identified by ctx until chain becomes ready
// (every work item submitted alongside it has returned), or, if chain is
// nil, until the scheduler has had a chance to run other ready work
// (§4.4's yield(nil): "give up the remainder of this fiber's turn without
// waiting on anything"). Yield must be called from within a running
// WorkFunc; calling it from any other goroutine is a programming error.
func (e *Engine) Yield(ctx context.Context, chain *Chain) {
	h, ok := FromContext(ctx)
	if !ok {
		assertf(e.cfg.AssertSink, "fiberwork: Yield called outside a fiber")
		return
	}
	f := h.f
	worker := int(f.hostWorker.LoadAcquire())

	if chain == nil {
		f.state.StoreRelease(int32(fiberWaiting))
		e.requeue(f)
		f.yield(worker)
		return
	}

	if chain.done() {
		assertf(e.cfg.AssertSink, "fiberwork: Yield called on an already-fired chain")
		return
	}

	f.state.StoreRelease(int32(fiberWaiting))
	if !chain.appendWaiter(f) {
		// Raced with the chain firing: it is already ready, so requeue
		// immediately instead of parking (§4.5).
		e.requeue(f)
	}
	f.yield(worker)
}

// PendingWork returns the number of fibers currently queued across every
// routing ring (main-affinity, aggressive, and default), not counting
// whichever fiber each worker currently has in hand. It is informational
// only, meant for load-shedding or diagnostics: the count may be stale by
// the time the caller observes it.
func (e *Engine) PendingWork() int {
	return e.mainRing.Len() + e.aggroRing.Len() + e.readyRing.Len()
}

// SubmitAndYield submits items and blocks the calling fiber until they
// have all returned, a convenience combining [Engine.Submit] and
// [Engine.Yield] (§4.4).
func (e *Engine) SubmitAndYield(ctx context.Context, items []WorkItem) error {
	chain, err := e.Submit(items)
	if err != nil {
		return err
	}
	if chain == nil {
		return nil
	}
	e.Yield(ctx, chain)
	return nil
}
