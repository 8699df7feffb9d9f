// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

// pad is cache line padding used to keep independently-written cursors on
// separate cache lines and prevent false sharing.
type pad [64]byte

// padShort is one cache line minus an 8-byte sequence field; a slot's total
// size is that line plus the size of its payload.
type padShort [64 - 8]byte

// roundToPow2 rounds n up to the next power of 2. Minimum result is 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
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
