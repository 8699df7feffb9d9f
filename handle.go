// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork

import (
	"context"

	"code.hybscloud.com/fiberwork/drift"
	"code.hybscloud.com/fiberwork/scope"
)

// Handle is a fiber's identity as seen from inside its own [WorkFunc]. The
// original engine keeps this in thread-local storage (ia_worker_thread_index,
// the running fiber pointer); Go has no portable, safe equivalent, so this
// module threads the identity explicitly through ctx instead (§0, the one
// deliberate departure from the original's architecture). A Handle is only
// valid for the duration of the WorkFunc call it was handed to: do not
// retain ctx or its Handle past that call.
type Handle struct {
	f *fiber
}

type handleKey struct{}

// withHandle returns a context carrying h, replacing any Handle ctx already
// carried.
func withHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

// FromContext returns the Handle carried by ctx. The second result is false
// if ctx was not derived from one handed to a WorkFunc by this package (for
// instance, a context built by the caller of [Engine.Run] before calling
// in).
func FromContext(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(handleKey{}).(*Handle)
	return h, ok
}

// WorkerIndex reports the index of the worker currently running the fiber
// identified by ctx, in [0, Config.ThreadCount). It may change between two
// calls separated by an [Engine.Yield]: a fiber can migrate between workers across
// a suspension (§4.2).
func WorkerIndex(ctx context.Context) int {
	h, ok := FromContext(ctx)
	if !ok {
		panic("fiberwork: WorkerIndex called outside a fiber")
	}
	return int(h.f.hostWorker.LoadAcquire())
}

// MainAffinity reports whether the fiber identified by ctx is currently
// running on worker 0, literally `worker_index() == 0` per spec.md §6 —
// true for any fiber worker 0 happens to be driving, not only fibers
// submitted with [ClassMainAffinity]: worker 0 also drains the shared
// aggressive and default rings once its own main-affinity queue is empty
// (§4.3).
func MainAffinity(ctx context.Context) bool {
	return WorkerIndex(ctx) == 0
}

// AllocatorFromContext returns the calling fiber's scratch allocator
// (§4.7). Memory returned from it is valid until the matching
// [drift.Allocator.Unshift] or until the fiber terminates, whichever comes
// first.
func AllocatorFromContext(ctx context.Context) *drift.Allocator {
	h, ok := FromContext(ctx)
	if !ok {
		panic("fiberwork: AllocatorFromContext called outside a fiber")
	}
	return h.f.drift
}

// ScopeFromContext returns the calling fiber's cleanup scope (§4.6).
func ScopeFromContext(ctx context.Context) *scope.Scope {
	h, ok := FromContext(ctx)
	if !ok {
		panic("fiberwork: ScopeFromContext called outside a fiber")
	}
	return h.f.scope
}
