// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork_test

import (
	"context"
	"testing"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiberwork"
)

// TestSchedulerBasic covers spec.md §8 S1: submit 1000 work items each
// incrementing a shared counter, yield, and expect the counter at 1000.
// It does not inspect the free-fiber pool afterwards.
func TestSchedulerBasic(t *testing.T) {
	cfg := fiberwork.DefaultConfig()
	cfg.ThreadCount = 4
	cfg.FiberCount = 64
	eng := fiberwork.New(cfg)

	var counter atomix.Int64
	code := eng.Run(func(ctx context.Context) int {
		items := make([]fiberwork.WorkItem, 1000)
		for i := range items {
			items[i] = fiberwork.WorkItem{
				Fn: func(ctx context.Context, _ any) { counter.AddAcqRel(1) },
			}
		}
		if err := eng.SubmitAndYield(ctx, items); err != nil {
			t.Errorf("SubmitAndYield: %v", err)
		}
		if got := counter.LoadAcquire(); got != 1000 {
			t.Errorf("counter = %d, want 1000", got)
		}
		return 0
	})
	if code != 0 {
		t.Fatalf("Run returned %d, want 0", code)
	}
}

// TestSchedulerNestedSubmits covers spec.md §8 S2: a work item that itself
// submits and yields on further work. 4 top-level items each fan out to
// 10 more; expect the shared atomic at 40.
func TestSchedulerNestedSubmits(t *testing.T) {
	cfg := fiberwork.DefaultConfig()
	cfg.ThreadCount = 4
	cfg.FiberCount = 64
	eng := fiberwork.New(cfg)

	var counter atomix.Int64
	var leaf fiberwork.WorkFunc = func(ctx context.Context, _ any) {
		counter.AddAcqRel(1)
	}
	var branch fiberwork.WorkFunc
	branch = func(ctx context.Context, _ any) {
		items := make([]fiberwork.WorkItem, 10)
		for i := range items {
			items[i] = fiberwork.WorkItem{Fn: leaf}
		}
		if err := eng.SubmitAndYield(ctx, items); err != nil {
			t.Errorf("nested SubmitAndYield: %v", err)
		}
	}

	code := eng.Run(func(ctx context.Context) int {
		items := make([]fiberwork.WorkItem, 4)
		for i := range items {
			items[i] = fiberwork.WorkItem{Fn: branch}
		}
		if err := eng.SubmitAndYield(ctx, items); err != nil {
			t.Errorf("top SubmitAndYield: %v", err)
		}
		if got := counter.LoadAcquire(); got != 40 {
			t.Errorf("counter = %d, want 40", got)
		}
		return 0
	})
	if code != 0 {
		t.Fatalf("Run returned %d, want 0", code)
	}
}

// TestMainAffinity covers spec.md §8 S6: 100 main_affinity items must all
// execute on worker 0; the other workers must never touch them.
func TestMainAffinity(t *testing.T) {
	cfg := fiberwork.DefaultConfig()
	cfg.ThreadCount = 4
	cfg.FiberCount = 32
	eng := fiberwork.New(cfg)

	var sawNonZero atomix.Bool
	var ran atomix.Int64

	code := eng.Run(func(ctx context.Context) int {
		items := make([]fiberwork.WorkItem, 100)
		for i := range items {
			items[i] = fiberwork.WorkItem{
				Class: fiberwork.ClassMainAffinity,
				Fn: func(ctx context.Context, _ any) {
					ran.AddAcqRel(1)
					if fiberwork.WorkerIndex(ctx) != 0 {
						sawNonZero.StoreRelease(true)
					}
				},
			}
		}
		if err := eng.SubmitAndYield(ctx, items); err != nil {
			t.Errorf("SubmitAndYield: %v", err)
		}
		return 0
	})
	if code != 0 {
		t.Fatalf("Run returned %d, want 0", code)
	}
	if ran.LoadAcquire() != 100 {
		t.Fatalf("ran = %d, want 100", ran.LoadAcquire())
	}
	if sawNonZero.LoadAcquire() {
		t.Fatal("a main_affinity item executed off worker 0")
	}
}

// TestSchedulerPendingWorkReflectsQueueDepth submits work before starting
// any worker (no [Engine.Run] call) and checks that [Engine.PendingWork]
// reports the queued items, since nothing is draining the rings yet.
func TestSchedulerPendingWorkReflectsQueueDepth(t *testing.T) {
	cfg := fiberwork.DefaultConfig()
	cfg.ThreadCount = 4
	cfg.FiberCount = 16
	eng := fiberwork.New(cfg)

	if got := eng.PendingWork(); got != 0 {
		t.Fatalf("PendingWork() before any submit = %d, want 0", got)
	}

	items := make([]fiberwork.WorkItem, 5)
	for i := range items {
		items[i] = fiberwork.WorkItem{Fn: func(context.Context, any) {}}
	}
	if _, err := eng.Submit(items); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := eng.PendingWork(); got != 5 {
		t.Fatalf("PendingWork() after submit = %d, want 5", got)
	}
}
