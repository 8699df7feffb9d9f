// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork

import "context"

// WorkFunc is the function signature for a unit of work. ctx carries the
// fiber's identity (see [FromContext], [WorkerIndex], [Engine.Yield]); data is the
// caller-supplied payload from the matching [WorkItem.Data].
type WorkFunc func(ctx context.Context, data any)

// SchedulingClass controls how the scheduler distributes a [WorkItem].
type SchedulingClass int8

const (
	// ClassDefault has no scheduling implications; it runs on any worker.
	ClassDefault SchedulingClass = iota
	// ClassAggressive is important work that should be picked up ahead of
	// default-class work when a worker has a choice (§4.3). This
	// implementation gives aggressive work a fast path: the scheduler
	// tries a dedicated ring before falling back to the shared
	// ready ring, reducing the number of CAS retries it races against.
	ClassAggressive
	// ClassMainAffinity work may only ever execute on worker 0.
	ClassMainAffinity
)

// String returns a lowercase scheduling-class name, matching spec.md's
// lowercase-enumerations resolution of the Open Question in §9.
func (c SchedulingClass) String() string {
	switch c {
	case ClassDefault:
		return "default"
	case ClassAggressive:
		return "aggressive"
	case ClassMainAffinity:
		return "main_affinity"
	default:
		return "unknown"
	}
}

// WorkItem describes one unit of work to submit to the scheduler. It is
// immutable once passed to [Engine.Submit]: the scheduler copies every
// field it needs before returning.
type WorkItem struct {
	// Fn is the work to run. A nil Fn is a programming error (§7).
	Fn WorkFunc
	// Data is passed to Fn unchanged.
	Data any
	// StackHint is the minimum scratch-allocator size hint in bytes for
	// this item; 0 uses the engine's configured default (see
	// [Config.DefaultStackSize]). A positive StackHint reserves capacity
	// in the assigned fiber's [drift.Allocator] up front via
	// [drift.Allocator.Reserve], avoiding a mid-work block growth for
	// work known in advance to allocate heavily.
	StackHint int
	// Class controls scheduling (§4.3, §4.4).
	Class SchedulingClass
	// Name is an optional debug name a fiber adopts for profiling/logging.
	Name string
}
