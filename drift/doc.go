// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package drift implements the per-fiber "drifter" bump allocator (spec
// §4.7, §3 "Drifter frame"): a linear arena with shift/unshift boundary
// markers instead of per-allocation free.
//
// Alloc hands out byte slices carved from the current block. Shift pushes
// a boundary; Unshift pops the most recently pushed boundary and logically
// frees everything allocated above it — no destructors run, matching the
// spec ("callers must have already run defers" via the scope package
// before unshifting). Boundaries nest.
//
// Blocks are recycled through a shared, size-bucketed pool instead of
// going back to the Go allocator on every Unshift, the same bucketed
// sync.Pool idiom the job system's sibling pack uses for its own
// hot-path buffer reuse.
package drift
