// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPSC is a bounded multi-producer single-consumer lock-free queue.
//
// Producers race a CAS on the shared tail cursor; the single consumer
// reads sequentially without needing any synchronization on its own
// cursor beyond the per-slot sequence field (see [core]). This backs the
// worker-0 local queue that main-affinity work is posted to: any fiber
// may submit main-affinity work (multi-producer), but only worker 0 ever
// drains it (single-consumer).
type MPSC[T any] struct {
	core[T]
	_    pad
	head atomix.Uint64 // consumer cursor, read by worker 0 only
	_    pad
	tail atomix.Uint64 // producers CAS here
	_    pad
}

// NewMPSC creates an MPSC queue of the given capacity, rounded up to a
// power of 2. Panics if capacity < 2.
func NewMPSC[T any](capacity int) *MPSC[T] {
	return &MPSC[T]{core: newCore[T](capacity)}
}

// Enqueue adds an element. Safe for any number of concurrent producers.
func (q *MPSC[T]) Enqueue(elem T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		head := q.head.LoadAcquire()
		if tail >= head+q.capacity {
			return ErrWouldBlock
		}

		slot := q.slot(tail)
		seq := slot.seq.LoadAcquire()

		if seq == tail {
			if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.data = elem
				slot.seq.StoreRelease(tail + 1)
				return nil
			}
		} else if seq < tail {
			return ErrWouldBlock
		}
		sw.Once()
	}
}

// Dequeue removes and returns an element. Single-consumer only.
func (q *MPSC[T]) Dequeue() (T, error) {
	head := q.head.LoadRelaxed()
	slot := q.slot(head)
	seq := slot.seq.LoadAcquire()

	if seq != head+1 {
		var zero T
		return zero, ErrWouldBlock
	}

	elem := slot.data
	var zero T
	slot.data = zero
	slot.seq.StoreRelease(head + q.capacity)
	q.head.StoreRelease(head + 1)
	return elem, nil
}

// Len reports the number of elements currently queued. It is informational
// only: concurrent producers and the single consumer may make the value
// stale before the caller observes it.
func (q *MPSC[T]) Len() int {
	tail := q.tail.LoadAcquire()
	head := q.head.LoadAcquire()
	if tail < head {
		return 0
	}
	return int(tail - head)
}
