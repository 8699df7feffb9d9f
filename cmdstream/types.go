// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmdstream

// ResourceID is an opaque handle to a renderer-owned object (buffer,
// texture, texture view, sampler, shader pipeline, query pool, ...). The
// concrete renderer backend that allocates and interprets these is out of
// this package's scope; the encoder only ever carries them through.
type ResourceID uint64

// Access is the resource-access stage used by the synchronization model
// that determines barrier placement around a record, supplemented from
// ia_render_access (original_source/include/ia/render_commands.h).
type Access uint8

const (
	AccessNone Access = iota
	AccessShaderRead
	AccessShaderWrite
	AccessColorAttachmentRead
	AccessColorAttachmentWrite
	AccessDepthStencilRead
	AccessDepthStencilWrite
	AccessTransferRead
	AccessTransferWrite
	AccessHostRead
	AccessHostWrite
	AccessPresent
)

// QueueMask composes the queue families (main, compute, transfer, sparse
// binding, video decode/encode) a record is eligible to run on,
// supplemented from ia_render_queue_type (render.h).
type QueueMask uint8

const (
	QueueMain QueueMask = 1 << iota
	QueueCompute
	QueueTransfer
	QueueSparseBinding
	QueueVideoDecode
	QueueVideoEncode

	QueueAny QueueMask = 0
)

// DeviceMask selects which logical rendering devices a record applies to,
// one bit per device, supplemented from ia_render_device_mask (render.h).
type DeviceMask uint32

const (
	DevicePrimary    DeviceMask = 1 << 0
	DeviceSecondary             = ^DevicePrimary
	DeviceAll        DeviceMask = 0xffffffff
)

// FilterMode selects the sampling filter a blit uses when src and dst
// extents differ.
type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// Offset3D is a texel or texture-slice offset.
type Offset3D struct{ X, Y, Z int32 }

// Extent3D is a texel-space size.
type Extent3D struct{ W, H, D uint32 }

// BufferCopyRegion describes one buffer-to-buffer copy span.
type BufferCopyRegion struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// TextureCopyRegion describes one texture-involving copy span.
type TextureCopyRegion struct {
	SrcSlice uint32
	SrcOff   Offset3D
	DstSlice uint32
	DstOff   Offset3D
	Extent   Extent3D
}

// BlitRegion describes one blit span, which unlike a copy may have
// mismatched source and destination extents (the filter resamples).
type BlitRegion struct {
	SrcSlice uint32
	SrcOff   Offset3D
	SrcExt   Extent3D
	DstSlice uint32
	DstOff   Offset3D
	DstExt   Extent3D
}

// ClearValue is a clear color (as four float32 lanes) or a depth/stencil
// pair, selected by IsDepthStencil. Unlike the union the original's
// ia_render_clear_value uses, Depth and Stencil are separate fields and are
// encoded separately from Color.
type ClearValue struct {
	Color        [4]float32
	Depth        float32
	Stencil      uint32
	IsDepthStencil bool
}

// Attachment describes one color, depth, or stencil attachment bound by
// begin_renderpass.
type Attachment struct {
	Target ResourceID
	Access Access
	Clear  ClearValue
	Load   bool // true: preserve prior contents; false: clear to Clear.
}
