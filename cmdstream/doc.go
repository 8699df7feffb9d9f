// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cmdstream implements the job system's command-stream encoder
// (§4.8 "Command-stream encoder"): a single-writer, forward-iterable
// sequence of variable-length records backed by a fiber's [drift.Allocator].
//
// A [Stream] is not safe for concurrent use, and not safe to iterate
// concurrently with appends: it is meant to be built up by one fiber over
// the course of recording a frame's render graph and handed off, already
// closed to further writes, to whatever consumes it (out of scope for this
// package — the concrete renderer backend, per the non-goals list).
//
// Every Emit method follows the same shape: compute the record's encoded
// size, pull that many bytes from the backing allocator, write a fixed
// header (record type, preferred queue mask, byte distance to the next
// record) followed by the record's fixed fields and any trailing data
// (region lists, a NUL-terminated label, push-constant bytes), then fold
// the record's queue mask into the stream's own. This package uses
// encoding/binary directly rather than a third-party serialization
// library: none of the pack's dependencies address fixed-layout binary
// records, and encoding/binary is the idiomatic standard-library choice
// for exactly this shape of wire format (see DESIGN.md).
package cmdstream
