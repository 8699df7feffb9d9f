// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmdstream

// RecordType tags a record's shape, catalogued in full from spec.md §4.8
// ("record catalogue (must all be supported)").
type RecordType uint16

const (
	RecordBindPipeline RecordType = iota
	RecordBufferFill
	RecordCopyBufferToBuffer
	RecordCopyBufferToTexture
	RecordCopyTextureToBuffer
	RecordCopyTextureToTexture
	RecordBlitTexture
	RecordClearTexture
	RecordResolve
	RecordDeferredDestroy
	RecordDiscardBuffer
	RecordDiscardTexture
	RecordRootConstants
	RecordTimestampWrite
	RecordTimestampResolve
	RecordBeginLabel
	RecordEndLabel
	RecordBeginRenderpass
	RecordEndRenderpass
	RecordDraw
	RecordDrawIndexed
	RecordDrawIndirect
	RecordDrawIndirectCount
	RecordDrawIndexedIndirect
	RecordDrawIndexedIndirectCount
	RecordDrawMeshTasks
	RecordDrawMeshTasksIndirect
	RecordDrawMeshTasksIndirectCount
	RecordDispatch
	RecordDispatchIndirect
	RecordTraceRays
	RecordTraceRaysIndirect
)

// header is the fixed 8-byte prefix of every record: the type tag, its
// preferred queue mask, one byte of padding, and next — the byte
// distance from the start of this header to the start of the following
// record's header — which is what makes the stream forward-iterable
// without inspecting Type (spec.md §4.8 "alignment constraint").
type header struct {
	Type  RecordType
	Queue QueueMask
	_     [1]byte
	Next  uint32
}

const headerSize = 8
