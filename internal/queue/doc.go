// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package queue provides the bounded lock-free rings the scheduler is built
// on: a multi-producer multi-consumer ring used as the global ready queue,
// and a multi-producer single-consumer ring used for worker-local
// main-affinity work.
//
// Both variants use the same per-slot sequence-number discipline: a cell
// holds a sequence field alongside its payload, and a producer/consumer
// advances its cursor with a CAS only after confirming the slot's sequence
// matches the cursor it is about to claim. Capacity is always rounded up to
// a power of two and slot count equals capacity (no doubled physical
// storage, unlike the FAA/SCQ family this package's algorithms were
// narrowed down from).
//
// None of the exported types allocate or block. Enqueue/Dequeue return
// [ErrWouldBlock] when the ring is full or empty, respectively; callers
// retry with [code.hybscloud.com/iox.Backoff] or a fiber yield.
package queue
