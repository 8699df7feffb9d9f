// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Ring is a bounded multi-producer multi-consumer lock-free queue.
//
// A producer only advances the shared tail cursor once it has confirmed
// (via the slot's sequence, see [core]) that the slot it is about to
// claim is actually empty; the symmetric check guards the consumer side.
// This is the algorithm spec.md §4.1 describes for the ready/pending
// ring: n physical slots for capacity n, CAS on the cursor, acquire/
// release on the sequence field.
//
// The producer cursor, the consumer cursor, and the slot array live on
// separate cache-line-padded regions to avoid false sharing.
type Ring[T any] struct {
	core[T]
	_    pad
	tail atomix.Uint64 // producer cursor
	_    pad
	head atomix.Uint64 // consumer cursor
	_    pad
}

// NewRing creates a ring of the given capacity, rounded up to a power of 2.
// Panics if capacity < 2.
func NewRing[T any](capacity int) *Ring[T] {
	return &Ring[T]{core: newCore[T](capacity)}
}

// Enqueue adds an element to the ring. Safe for any number of concurrent
// producers. Returns [ErrWouldBlock] if the ring is full.
func (q *Ring[T]) Enqueue(elem T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		slot := q.slot(tail)
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(tail)

		if diff == 0 {
			if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.data = elem
				slot.seq.StoreRelease(tail + 1)
				return nil
			}
		} else if diff < 0 {
			return ErrWouldBlock
		}
		sw.Once()
	}
}

// Dequeue removes and returns an element. Safe for any number of
// concurrent consumers. Returns [ErrWouldBlock] if the ring is empty.
func (q *Ring[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		slot := q.slot(head)
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(head+1)

		if diff == 0 {
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				elem := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(head + q.capacity)
				return elem, nil
			}
		} else if diff < 0 {
			var zero T
			return zero, ErrWouldBlock
		}
		sw.Once()
	}
}

// Len reports the number of elements currently queued. It is informational
// only: concurrent producers/consumers may make the value stale before the
// caller observes it.
func (q *Ring[T]) Len() int {
	tail := q.tail.LoadAcquire()
	head := q.head.LoadAcquire()
	if tail < head {
		return 0
	}
	return int(tail - head)
}
