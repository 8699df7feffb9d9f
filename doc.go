// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fiberwork is the concurrency core of a game/engine foundation
// library: a fiber-based, work-stealing-capable job system together with
// the lock-free bounded queues it runs on.
//
// # Model
//
// A goroutine is this package's fiber: the Go runtime already performs the
// save/restore-machine-state work that a hand-rolled fiber context switch
// would otherwise need per architecture. [Engine] keeps a fixed pool of
// fiber-hosting goroutines and a fixed set of worker goroutines (pinned to
// OS threads), and reproduces the Naughty-Dog-style job system on top of
// them: work submitted via [Engine.Submit] is wrapped into a fiber and
// dropped onto a lock-free ready ring; a fiber that calls [Engine.Yield]
// parks itself on a [Chain] and hands its worker back to the ready loop;
// when the chain's pending count reaches zero every parked fiber is
// requeued, possibly onto a different worker than it suspended on.
//
// # Quick start
//
//	eng := fiberwork.New(fiberwork.DefaultConfig())
//	code := eng.Run(func(ctx context.Context) int {
//	    chain, _ := eng.Submit([]fiberwork.WorkItem{
//	        {Fn: func(ctx context.Context, data any) { fmt.Println(data) }, Data: "hello"},
//	    })
//	    eng.Yield(ctx, chain)
//	    return 0
//	})
//
// # Fiber identity
//
// The spec this package implements describes yield/worker-index as free
// functions relying on thread-local fiber identity. Go goroutines have no
// safe, portable TLS, so this package threads fiber identity explicitly
// through a [context.Context] handed to every [WorkFunc] and to the
// bootstrap's main function instead: [Engine.Yield], [WorkerIndex], and
// [MainAffinity] all take that ctx. This is the one deliberate departure
// from literal thread-local-storage semantics; every other invariant
// (migration across yields, main-affinity exclusivity, at-most-once
// execution, chain arithmetic) holds exactly as specified.
package fiberwork
