// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import "code.hybscloud.com/atomix"

// seqSlot is one element slot shared by every sequence-numbered bounded
// queue variant in this package (spec.md §4.1): at rest, slot i has
// seq == i while empty, seq == i+1 once filled, and seq == i+capacity
// once drained and ready for the slot's next cycle.
type seqSlot[T any] struct {
	seq atomix.Uint64
	data T
	_    padShort
}

// core holds the slot buffer and sizing shared by [Ring] and [MPSC]: both
// are a ring of [seqSlot] with a power-of-2 capacity, differing only in
// how producers and the consumer(s) claim a cursor position. Embedding
// core keeps that buffer bookkeeping defined once.
type core[T any] struct {
	buffer   []seqSlot[T]
	mask     uint64
	capacity uint64
}

// newCore allocates a core of the given capacity, rounded up to a power
// of 2, with every slot's sequence primed to its own index. Panics if
// capacity < 2.
func newCore[T any](capacity int) core[T] {
	if capacity < 2 {
		panic("queue: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	c := core[T]{
		buffer:   make([]seqSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}
	for i := uint64(0); i < n; i++ {
		c.buffer[i].seq.StoreRelaxed(i)
	}
	return c
}

// slot returns the slot at the given cursor position.
func (c *core[T]) slot(pos uint64) *seqSlot[T] {
	return &c.buffer[pos&c.mask]
}

// Cap returns the queue's physical capacity.
func (c *core[T]) Cap() int {
	return int(c.capacity)
}
