// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmdstream

import "encoding/binary"

// Record is one decoded entry as seen while walking a Stream with
// [Stream.Iterate]. Payload is everything after the header: the record's
// fixed fields followed by any trailing data, still raw.
type Record struct {
	Type    RecordType
	Queue   QueueMask
	Payload []byte
}

// Iterate walks the stream from its first record to its last, calling fn
// with each one in encounter order. Iterate stops early if fn returns
// false. It is single-reader only: iterating a Stream that a writer is
// still appending to is undefined, matching spec.md §4.8's "not
// thread-safe."
func (s *Stream) Iterate(fn func(Record) bool) {
	buf := s.buf
	for len(buf) > 0 {
		if len(buf) < headerSize {
			return
		}
		rt := RecordType(binary.LittleEndian.Uint16(buf[0:2]))
		queue := QueueMask(buf[2])
		next := int(binary.LittleEndian.Uint32(buf[4:8]))
		if next < headerSize || next > len(buf) {
			return
		}
		rec := Record{Type: rt, Queue: queue, Payload: buf[headerSize:next]}
		if !fn(rec) {
			return
		}
		buf = buf[next:]
	}
}

// ParseBufferFill decodes a RecordBufferFill payload.
func ParseBufferFill(payload []byte) (dst ResourceID, offset, size uint64, value byte) {
	dst = ResourceID(binary.LittleEndian.Uint64(payload[0:8]))
	offset = binary.LittleEndian.Uint64(payload[8:16])
	size = binary.LittleEndian.Uint64(payload[16:24])
	value = payload[24]
	return
}

// ParseDraw decodes a RecordDraw payload.
func ParseDraw(payload []byte) (vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vertexCount = binary.LittleEndian.Uint32(payload[0:4])
	instanceCount = binary.LittleEndian.Uint32(payload[4:8])
	firstVertex = binary.LittleEndian.Uint32(payload[8:12])
	firstInstance = binary.LittleEndian.Uint32(payload[12:16])
	return
}

// ParseCopyBufferToBuffer decodes a RecordCopyBufferToBuffer payload's
// fixed fields; the region list follows in payload[20:].
func ParseCopyBufferToBuffer(payload []byte) (src, dst ResourceID, regionCount uint32) {
	src = ResourceID(binary.LittleEndian.Uint64(payload[0:8]))
	dst = ResourceID(binary.LittleEndian.Uint64(payload[8:16]))
	regionCount = binary.LittleEndian.Uint32(payload[16:20])
	return
}
