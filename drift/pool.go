// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package drift

import "sync"

// blockPool recycles byte-slice blocks in power-of-2 size buckets so
// Unshift can return memory without handing it back to the Go allocator,
// and Alloc's block growth can reuse a previously-freed block instead of
// allocating.
type blockPool struct {
	mu      sync.Mutex
	buckets map[int]*sync.Pool
}

func newBlockPool() *blockPool {
	return &blockPool{buckets: make(map[int]*sync.Pool)}
}

func (p *blockPool) bucket(size int) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.buckets[size]
	if !ok {
		b = &sync.Pool{New: func() any {
			buf := make([]byte, size)
			return &buf
		}}
		p.buckets[size] = b
	}
	return b
}

func (p *blockPool) get(size int) []byte {
	size = roundToPow2(size)
	buf := *(p.bucket(size).Get().(*[]byte))
	return buf[:0:size]
}

func (p *blockPool) put(buf []byte) {
	size := cap(buf)
	if size&(size-1) != 0 || size == 0 {
		// Oversized one-off blocks (not a power of 2) are not pooled;
		// let the garbage collector reclaim them.
		return
	}
	buf = buf[:size]
	p.bucket(size).Put(&buf)
}

func roundToPow2(n int) int {
	if n < 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
