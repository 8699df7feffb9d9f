// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork

import (
	"code.hybscloud.com/iox"
)

// worker drives one OS-thread-affine run loop. Worker 0 additionally owns
// the main-affinity MPSC queue (§4.3) and is the only worker ever allowed
// to dequeue from it.
type worker struct {
	index  int
	engine *Engine
}

// run is the worker's main loop: repeatedly pull a runnable fiber from the
// class rings (a fresh one to start, or a requeued waiter to resume; both
// kinds share the same rings) and drive it until it yields or finishes. It
// returns once the engine is stopped and no fiber is runnable.
func (w *worker) run() {
	if err := pinToCPU(w.index); err != nil && w.engine.cfg.Logf != nil {
		w.engine.cfg.Logf("fiberwork: worker %d: cpu affinity: %v", w.index, err)
	}

	bo := iox.Backoff{}
	for {
		f, ok := w.next()
		if !ok {
			if w.engine.stopped.LoadAcquire() {
				return
			}
			bo.Wait()
			continue
		}
		bo.Reset()
		w.drive(f)
	}
}

// next returns the next fiber this worker should drive: worker-0's local
// main-affinity queue first, then the aggressive ring, then the shared
// ready ring, matching §4.3's "main-affinity work is scheduled ahead of
// default-class work on worker 0" and aggressive work's priority over
// default-class work on every worker.
func (w *worker) next() (*fiber, bool) {
	if w.index == 0 {
		if f, err := w.engine.mainRing.Dequeue(); err == nil {
			return f, true
		}
	}
	if f, err := w.engine.aggroRing.Dequeue(); err == nil {
		return f, true
	}
	if f, err := w.engine.readyRing.Dequeue(); err == nil {
		return f, true
	}
	return nil, false
}

// drive runs a single scheduling step for f: starts it if it was freshly
// popped off the ready ring, or resumes it if it was requeued after a
// chain it parked on fired. Handles the fiber's outcome (yielded again, or
// finished and recycled) before returning.
func (w *worker) drive(f *fiber) {
	wasFresh := fiberState(f.state.LoadAcquire()) == fiberReady
	f.state.StoreRelease(int32(fiberRunning))

	var out outcome
	if wasFresh {
		out = f.start(f.item, w.index)
	} else {
		out = f.resume(w.index)
	}

	switch out.kind {
	case outcomeYielded:
		f.state.StoreRelease(int32(fiberWaiting))
		// The fiber parked itself on a chain (or requested an immediate
		// requeue via yield(nil)) from within Yield before returning
		// control here; nothing further to do until something requeues it.
	case outcomeFinished:
		w.engine.finishFiber(f)
	}
}
