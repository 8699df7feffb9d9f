// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmdstream

import (
	"encoding/binary"
	"math"

	"code.hybscloud.com/fiberwork/drift"
)

// Stream accumulates variable-length command records in a single
// contiguous, fiber-owned buffer. Not safe for concurrent use, and not
// safe to [Stream.Iterate] while a writer goroutine is still appending.
type Stream struct {
	alloc      *drift.Allocator
	buf        []byte
	deviceMask DeviceMask
	queueMask  QueueMask
}

// New returns an empty Stream whose growth is backed by alloc and whose
// records are logically broadcast to deviceMask unless a record narrows
// that further itself.
func New(alloc *drift.Allocator, deviceMask DeviceMask) *Stream {
	return &Stream{alloc: alloc, deviceMask: deviceMask}
}

// DeviceMask returns the stream's device mask.
func (s *Stream) DeviceMask() DeviceMask { return s.deviceMask }

// QueueMask returns the bitwise OR of every emitted record's preferred
// queue.
func (s *Stream) QueueMask() QueueMask { return s.queueMask }

// Len returns the number of bytes recorded so far.
func (s *Stream) Len() int { return len(s.buf) }

// reserve grows buf by n bytes, doubling the backing allocation from the
// drifter as needed, and returns the newly appended region.
func (s *Stream) reserve(n int) []byte {
	need := len(s.buf) + n
	if need <= cap(s.buf) {
		s.buf = s.buf[:need]
		return s.buf[need-n : need]
	}

	newCap := cap(s.buf)
	if newCap == 0 {
		newCap = 256
	}
	for newCap < need {
		newCap *= 2
	}
	nb := s.alloc.Alloc(newCap, 8)[:len(s.buf)]
	copy(nb, s.buf)
	s.buf = nb[:need]
	return s.buf[need-n : need]
}

func putHeader(dst []byte, rt RecordType, queue QueueMask, total int) {
	binary.LittleEndian.PutUint16(dst[0:2], uint16(rt))
	dst[2] = byte(queue)
	binary.LittleEndian.PutUint32(dst[4:8], uint32(total))
}

func putOffset3D(dst []byte, o Offset3D) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(o.X))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(o.Y))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(o.Z))
}

func putExtent3D(dst []byte, e Extent3D) {
	binary.LittleEndian.PutUint32(dst[0:4], e.W)
	binary.LittleEndian.PutUint32(dst[4:8], e.H)
	binary.LittleEndian.PutUint32(dst[8:12], e.D)
}

const (
	offset3DSize = 12
	extent3DSize = 12
)

// emit writes a complete record (header + fixedLen bytes of fixed fields,
// populated by writeFixed, + trailing) and folds queue into the stream's
// mask.
func (s *Stream) emit(rt RecordType, queue QueueMask, fixedLen int, writeFixed func(fixed []byte), trailing []byte) {
	total := headerSize + fixedLen + len(trailing)
	rec := s.reserve(total)
	putHeader(rec, rt, queue, total)
	if fixedLen > 0 {
		writeFixed(rec[headerSize : headerSize+fixedLen])
	}
	copy(rec[headerSize+fixedLen:], trailing)
	s.queueMask |= queue
}

// EmitBindPipeline binds a shader pipeline for subsequent draw/dispatch
// records.
func (s *Stream) EmitBindPipeline(pipeline ResourceID, queue QueueMask) {
	s.emit(RecordBindPipeline, queue, 8, func(f []byte) {
		binary.LittleEndian.PutUint64(f, uint64(pipeline))
	}, nil)
}

// EmitBufferFill fills dst[offset:offset+size] with the repeated byte
// value.
func (s *Stream) EmitBufferFill(dst ResourceID, offset, size uint64, value byte, queue QueueMask) {
	s.emit(RecordBufferFill, queue, 25, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(dst))
		binary.LittleEndian.PutUint64(f[8:16], offset)
		binary.LittleEndian.PutUint64(f[16:24], size)
		f[24] = value
	}, nil)
}

// EmitCopyBufferToBuffer copies regions from src to dst.
func (s *Stream) EmitCopyBufferToBuffer(src, dst ResourceID, regions []BufferCopyRegion, queue QueueMask) {
	const fixed = 8 + 8 + 4
	trailing := make([]byte, len(regions)*24)
	for i, r := range regions {
		o := trailing[i*24:]
		binary.LittleEndian.PutUint64(o[0:8], r.SrcOffset)
		binary.LittleEndian.PutUint64(o[8:16], r.DstOffset)
		binary.LittleEndian.PutUint64(o[16:24], r.Size)
	}
	s.emit(RecordCopyBufferToBuffer, queue, fixed, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(src))
		binary.LittleEndian.PutUint64(f[8:16], uint64(dst))
		binary.LittleEndian.PutUint32(f[16:20], uint32(len(regions)))
	}, trailing)
}

// EmitCopyTextureToTexture copies regions of a texture across src/dst
// access states. copy_buffer↔copy_texture variants share this shape per
// spec.md's payload table (src, dst, src_access, dst_access, region_count).
func (s *Stream) EmitCopyTextureToTexture(src, dst ResourceID, srcAccess, dstAccess Access, regions []TextureCopyRegion, queue QueueMask) {
	s.emitTextureCopyLike(RecordCopyTextureToTexture, src, dst, srcAccess, dstAccess, regions, queue)
}

// EmitCopyBufferToTexture copies buffer bytes into a texture's regions.
func (s *Stream) EmitCopyBufferToTexture(src, dst ResourceID, dstAccess Access, regions []TextureCopyRegion, queue QueueMask) {
	s.emitTextureCopyLike(RecordCopyBufferToTexture, src, dst, AccessNone, dstAccess, regions, queue)
}

// EmitCopyTextureToBuffer copies a texture's regions into a buffer.
func (s *Stream) EmitCopyTextureToBuffer(src, dst ResourceID, srcAccess Access, regions []TextureCopyRegion, queue QueueMask) {
	s.emitTextureCopyLike(RecordCopyTextureToBuffer, src, dst, srcAccess, AccessNone, regions, queue)
}

func (s *Stream) emitTextureCopyLike(rt RecordType, src, dst ResourceID, srcAccess, dstAccess Access, regions []TextureCopyRegion, queue QueueMask) {
	const fixed = 8 + 8 + 1 + 1 + 2 + 4 // 2 bytes of padding before the uint32 region count
	const regionSize = 4 + offset3DSize + 4 + offset3DSize + extent3DSize
	trailing := make([]byte, len(regions)*regionSize)
	for i, r := range regions {
		o := trailing[i*regionSize:]
		binary.LittleEndian.PutUint32(o[0:4], r.SrcSlice)
		putOffset3D(o[4:16], r.SrcOff)
		binary.LittleEndian.PutUint32(o[16:20], r.DstSlice)
		putOffset3D(o[20:32], r.DstOff)
		putExtent3D(o[32:44], r.Extent)
	}
	s.emit(rt, queue, fixed, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(src))
		binary.LittleEndian.PutUint64(f[8:16], uint64(dst))
		f[16] = byte(srcAccess)
		f[17] = byte(dstAccess)
		binary.LittleEndian.PutUint32(f[20:24], uint32(len(regions)))
	}, trailing)
}

// EmitBlitTexture resamples regions from src into dst using filter.
func (s *Stream) EmitBlitTexture(src, dst ResourceID, srcAccess, dstAccess Access, filter FilterMode, regions []BlitRegion, queue QueueMask) {
	const fixed = 8 + 8 + 1 + 1 + 1 + 1 + 4 // 1 byte of padding before the uint32 region count
	const regionSize = 4 + offset3DSize + extent3DSize + 4 + offset3DSize + extent3DSize
	trailing := make([]byte, len(regions)*regionSize)
	for i, r := range regions {
		o := trailing[i*regionSize:]
		binary.LittleEndian.PutUint32(o[0:4], r.SrcSlice)
		putOffset3D(o[4:16], r.SrcOff)
		putExtent3D(o[16:28], r.SrcExt)
		binary.LittleEndian.PutUint32(o[28:32], r.DstSlice)
		putOffset3D(o[32:44], r.DstOff)
		putExtent3D(o[44:56], r.DstExt)
	}
	s.emit(RecordBlitTexture, queue, fixed, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(src))
		binary.LittleEndian.PutUint64(f[8:16], uint64(dst))
		f[16] = byte(srcAccess)
		f[17] = byte(dstAccess)
		f[18] = byte(filter)
		binary.LittleEndian.PutUint32(f[20:24], uint32(len(regions)))
	}, trailing)
}

// EmitClearTexture clears slice of dst to value.
func (s *Stream) EmitClearTexture(dst ResourceID, slice uint32, access Access, value ClearValue, queue QueueMask) {
	s.emit(RecordClearTexture, queue, 40, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(dst))
		binary.LittleEndian.PutUint32(f[8:12], slice)
		f[12] = byte(access)
		if value.IsDepthStencil {
			f[13] = 1
		}
		binary.LittleEndian.PutUint32(f[16:20], math.Float32bits(value.Depth))
		binary.LittleEndian.PutUint32(f[20:24], value.Stencil)
		for i, c := range value.Color {
			binary.LittleEndian.PutUint32(f[24+i*4:28+i*4][:4], math.Float32bits(c))
		}
	}, nil)
}

// EmitResolve resolves a multisampled src into dst over regions.
func (s *Stream) EmitResolve(src, dst ResourceID, regions []TextureCopyRegion, queue QueueMask) {
	s.emitTextureCopyLike(RecordResolve, src, dst, AccessNone, AccessNone, regions, queue)
}

// EmitDeferredDestroy marks target for destruction once every
// currently-in-flight use across deviceMask has retired.
func (s *Stream) EmitDeferredDestroy(target ResourceID, deviceMask DeviceMask, queue QueueMask) {
	s.emit(RecordDeferredDestroy, queue, 12, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(target))
		binary.LittleEndian.PutUint32(f[8:12], uint32(deviceMask))
	}, nil)
}

// EmitDiscardBuffer discards the contents of buf without destroying it.
func (s *Stream) EmitDiscardBuffer(buf ResourceID, queue QueueMask) {
	s.emit(RecordDiscardBuffer, queue, 8, func(f []byte) {
		binary.LittleEndian.PutUint64(f, uint64(buf))
	}, nil)
}

// EmitDiscardTexture discards the given mip/slice range of tex.
func (s *Stream) EmitDiscardTexture(tex ResourceID, firstMip, mipCount, firstSlice, sliceCount uint32, queue QueueMask) {
	s.emit(RecordDiscardTexture, queue, 24, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(tex))
		binary.LittleEndian.PutUint32(f[8:12], firstMip)
		binary.LittleEndian.PutUint32(f[12:16], mipCount)
		binary.LittleEndian.PutUint32(f[16:20], firstSlice)
		binary.LittleEndian.PutUint32(f[20:24], sliceCount)
	}, nil)
}

// EmitRootConstants pushes data as root/push constants visible to
// stageMask at the given byte offset.
func (s *Stream) EmitRootConstants(stageMask uint32, offset uint32, data []byte, queue QueueMask) {
	s.emit(RecordRootConstants, queue, 12, func(f []byte) {
		binary.LittleEndian.PutUint32(f[0:4], stageMask)
		binary.LittleEndian.PutUint32(f[4:8], offset)
		binary.LittleEndian.PutUint32(f[8:12], uint32(len(data)))
	}, data)
}

// EmitTimestampWrite writes the current GPU timestamp into pool at index.
func (s *Stream) EmitTimestampWrite(pool ResourceID, index uint32, queue QueueMask) {
	s.emit(RecordTimestampWrite, queue, 12, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(pool))
		binary.LittleEndian.PutUint32(f[8:12], index)
	}, nil)
}

// EmitTimestampResolve resolves count timestamp entries from pool starting
// at first into dst at dstOffset.
func (s *Stream) EmitTimestampResolve(pool ResourceID, first, count uint32, dst ResourceID, dstOffset uint64, queue QueueMask) {
	s.emit(RecordTimestampResolve, queue, 32, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(pool))
		binary.LittleEndian.PutUint32(f[8:12], first)
		binary.LittleEndian.PutUint32(f[12:16], count)
		binary.LittleEndian.PutUint64(f[16:24], uint64(dst))
		binary.LittleEndian.PutUint64(f[24:32], dstOffset)
	}, nil)
}

// EmitBeginLabel opens a named, colored debug region.
func (s *Stream) EmitBeginLabel(name string, color [4]float32, queue QueueMask) {
	trailing := make([]byte, len(name)+1)
	copy(trailing, name)
	s.emit(RecordBeginLabel, queue, 20, func(f []byte) {
		for i, c := range color {
			binary.LittleEndian.PutUint32(f[i*4:i*4+4], math.Float32bits(c))
		}
		binary.LittleEndian.PutUint32(f[16:20], uint32(len(name)))
	}, trailing)
}

// EmitEndLabel closes the most recently opened debug region.
func (s *Stream) EmitEndLabel(queue QueueMask) {
	s.emit(RecordEndLabel, queue, 0, nil, nil)
}

// EmitBeginRenderpass opens a renderpass over the given color, depth, and
// stencil attachments within renderArea.
func (s *Stream) EmitBeginRenderpass(color []Attachment, depth, stencil *Attachment, renderArea Extent3D, queue QueueMask) {
	const attachmentSize = 8 + 1 + 16 + 4 + 4 + 1 + 1
	n := len(color)
	if depth != nil {
		n++
	}
	if stencil != nil {
		n++
	}
	trailing := make([]byte, n*attachmentSize)
	off := 0
	put := func(a Attachment) {
		o := trailing[off:]
		binary.LittleEndian.PutUint64(o[0:8], uint64(a.Target))
		o[8] = byte(a.Access)
		for i, c := range a.Clear.Color {
			binary.LittleEndian.PutUint32(o[9+i*4:13+i*4][:4], math.Float32bits(c))
		}
		binary.LittleEndian.PutUint32(o[25:29], math.Float32bits(a.Clear.Depth))
		binary.LittleEndian.PutUint32(o[29:33], a.Clear.Stencil)
		if a.Clear.IsDepthStencil {
			o[33] = 1
		}
		if a.Load {
			o[34] = 1
		}
		off += attachmentSize
	}
	for _, a := range color {
		put(a)
	}
	if depth != nil {
		put(*depth)
	}
	if stencil != nil {
		put(*stencil)
	}

	s.emit(RecordBeginRenderpass, queue, 16, func(f []byte) {
		f[0] = byte(len(color))
		if depth != nil {
			f[1] = 1
		}
		if stencil != nil {
			f[2] = 1
		}
		putExtent3D(f[4:16], renderArea)
	}, trailing)
}

// EmitEndRenderpass closes the current renderpass.
func (s *Stream) EmitEndRenderpass(queue QueueMask) {
	s.emit(RecordEndRenderpass, queue, 0, nil, nil)
}

// EmitDraw records a non-indexed draw.
func (s *Stream) EmitDraw(vertexCount, instanceCount, firstVertex, firstInstance uint32, queue QueueMask) {
	s.emit(RecordDraw, queue, 16, func(f []byte) {
		binary.LittleEndian.PutUint32(f[0:4], vertexCount)
		binary.LittleEndian.PutUint32(f[4:8], instanceCount)
		binary.LittleEndian.PutUint32(f[8:12], firstVertex)
		binary.LittleEndian.PutUint32(f[12:16], firstInstance)
	}, nil)
}

// EmitDrawIndexed records an indexed draw.
func (s *Stream) EmitDrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32, queue QueueMask) {
	s.emit(RecordDrawIndexed, queue, 20, func(f []byte) {
		binary.LittleEndian.PutUint32(f[0:4], indexCount)
		binary.LittleEndian.PutUint32(f[4:8], instanceCount)
		binary.LittleEndian.PutUint32(f[8:12], firstIndex)
		binary.LittleEndian.PutUint32(f[12:16], uint32(vertexOffset))
		binary.LittleEndian.PutUint32(f[16:20], firstInstance)
	}, nil)
}

func (s *Stream) emitIndirect(rt RecordType, buf ResourceID, offset uint64, queue QueueMask) {
	s.emit(rt, queue, 16, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(buf))
		binary.LittleEndian.PutUint64(f[8:16], offset)
	}, nil)
}

func (s *Stream) emitIndirectCount(rt RecordType, buf ResourceID, offset uint64, countBuf ResourceID, countOffset uint64, maxDraws uint32, queue QueueMask) {
	s.emit(rt, queue, 36, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(buf))
		binary.LittleEndian.PutUint64(f[8:16], offset)
		binary.LittleEndian.PutUint64(f[16:24], uint64(countBuf))
		binary.LittleEndian.PutUint64(f[24:32], countOffset)
		binary.LittleEndian.PutUint32(f[32:36], maxDraws)
	}, nil)
}

// EmitDrawIndirect issues a draw whose parameters are read from buf at
// offset.
func (s *Stream) EmitDrawIndirect(buf ResourceID, offset uint64, queue QueueMask) {
	s.emitIndirect(RecordDrawIndirect, buf, offset, queue)
}

// EmitDrawIndirectCount is EmitDrawIndirect with a GPU-resident draw count.
func (s *Stream) EmitDrawIndirectCount(buf ResourceID, offset uint64, countBuf ResourceID, countOffset uint64, maxDraws uint32, queue QueueMask) {
	s.emitIndirectCount(RecordDrawIndirectCount, buf, offset, countBuf, countOffset, maxDraws, queue)
}

// EmitDrawIndexedIndirect is the indexed-draw analogue of EmitDrawIndirect.
func (s *Stream) EmitDrawIndexedIndirect(buf ResourceID, offset uint64, queue QueueMask) {
	s.emitIndirect(RecordDrawIndexedIndirect, buf, offset, queue)
}

// EmitDrawIndexedIndirectCount is the indexed-draw analogue of
// EmitDrawIndirectCount.
func (s *Stream) EmitDrawIndexedIndirectCount(buf ResourceID, offset uint64, countBuf ResourceID, countOffset uint64, maxDraws uint32, queue QueueMask) {
	s.emitIndirectCount(RecordDrawIndexedIndirectCount, buf, offset, countBuf, countOffset, maxDraws, queue)
}

// EmitDrawMeshTasks dispatches groupX×groupY×groupZ mesh-shader task
// groups.
func (s *Stream) EmitDrawMeshTasks(groupX, groupY, groupZ uint32, queue QueueMask) {
	s.emit(RecordDrawMeshTasks, queue, 12, func(f []byte) {
		binary.LittleEndian.PutUint32(f[0:4], groupX)
		binary.LittleEndian.PutUint32(f[4:8], groupY)
		binary.LittleEndian.PutUint32(f[8:12], groupZ)
	}, nil)
}

// EmitDrawMeshTasksIndirect is EmitDrawMeshTasks with GPU-resident
// parameters.
func (s *Stream) EmitDrawMeshTasksIndirect(buf ResourceID, offset uint64, queue QueueMask) {
	s.emitIndirect(RecordDrawMeshTasksIndirect, buf, offset, queue)
}

// EmitDrawMeshTasksIndirectCount is EmitDrawMeshTasksIndirect with a
// GPU-resident task-group count.
func (s *Stream) EmitDrawMeshTasksIndirectCount(buf ResourceID, offset uint64, countBuf ResourceID, countOffset uint64, maxDraws uint32, queue QueueMask) {
	s.emitIndirectCount(RecordDrawMeshTasksIndirectCount, buf, offset, countBuf, countOffset, maxDraws, queue)
}

// EmitDispatch dispatches groupX×groupY×groupZ compute workgroups.
func (s *Stream) EmitDispatch(groupX, groupY, groupZ uint32, queue QueueMask) {
	s.emit(RecordDispatch, queue, 12, func(f []byte) {
		binary.LittleEndian.PutUint32(f[0:4], groupX)
		binary.LittleEndian.PutUint32(f[4:8], groupY)
		binary.LittleEndian.PutUint32(f[8:12], groupZ)
	}, nil)
}

// EmitDispatchIndirect dispatches with GPU-resident group counts.
func (s *Stream) EmitDispatchIndirect(buf ResourceID, offset uint64, queue QueueMask) {
	s.emitIndirect(RecordDispatchIndirect, buf, offset, queue)
}

// EmitTraceRays traces a w×h×d extent of rays through the bound shader
// binding table.
func (s *Stream) EmitTraceRays(extent Extent3D, sbt ResourceID, raygenOff, missOff, hitOff, callableOff uint32, queue QueueMask) {
	s.emit(RecordTraceRays, queue, 12+8+16, func(f []byte) {
		putExtent3D(f[0:12], extent)
		binary.LittleEndian.PutUint64(f[12:20], uint64(sbt))
		binary.LittleEndian.PutUint32(f[20:24], raygenOff)
		binary.LittleEndian.PutUint32(f[24:28], missOff)
		binary.LittleEndian.PutUint32(f[28:32], hitOff)
		binary.LittleEndian.PutUint32(f[32:36], callableOff)
	}, nil)
}

// EmitTraceRaysIndirect is EmitTraceRays with a GPU-resident extent.
func (s *Stream) EmitTraceRaysIndirect(sbt ResourceID, raygenOff, missOff, hitOff, callableOff uint32, paramsBuf ResourceID, paramsOffset uint64, queue QueueMask) {
	s.emit(RecordTraceRaysIndirect, queue, 8+16+8+8, func(f []byte) {
		binary.LittleEndian.PutUint64(f[0:8], uint64(sbt))
		binary.LittleEndian.PutUint32(f[8:12], raygenOff)
		binary.LittleEndian.PutUint32(f[12:16], missOff)
		binary.LittleEndian.PutUint32(f[16:20], hitOff)
		binary.LittleEndian.PutUint32(f[20:24], callableOff)
		binary.LittleEndian.PutUint64(f[24:32], uint64(paramsBuf))
		binary.LittleEndian.PutUint64(f[32:40], paramsOffset)
	}, nil)
}
