// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork

import "runtime"

// Config enumerates the bootstrap knobs of the job system. Field names and
// defaults mirror ia_framework_hints from the original engine's framework
// header: default stack size, worker thread count, fiber pool size, and the
// ready ring's capacity exponent.
type Config struct {
	// DefaultStackSize is used for work items that request stack size 0.
	// Go goroutine stacks grow on demand; this instead sizes a fiber's
	// initial drifter arena block, the nearest equivalent of "this fiber
	// will need more scratch space up front."
	DefaultStackSize int

	// ThreadCount is the number of worker goroutines, including worker 0
	// (the caller of Run). Defaults to the host's logical CPU count.
	ThreadCount int

	// FiberCount is the size of the fiber pool. Defaults to 128.
	FiberCount int

	// Log2WorkCount sizes the global ready ring: capacity = 2^Log2WorkCount.
	// Defaults to 12 (4096 slots).
	Log2WorkCount int

	// AssertSink handles programming-error assertions (§7). Defaults to
	// DefaultAssertSink, which panics with an [AssertionError] carrying
	// the stack trace.
	AssertSink AssertSink

	// Logf receives diagnostic messages (currently only worker CPU
	// affinity failures). Nil means silent; logging sinks and
	// formatting are explicitly out of this package's scope and left to
	// the host application.
	Logf func(format string, args ...any)
}

// DefaultConfig returns a Config with every knob defaulted the way
// ia_framework_hints defaults them.
func DefaultConfig() Config {
	return Config{
		DefaultStackSize: 64 * 1024,
		ThreadCount:      runtime.NumCPU(),
		FiberCount:       128,
		Log2WorkCount:    12,
		AssertSink:       DefaultAssertSink{},
	}
}

// normalize replaces zero or negative fields with their defaults,
// mirroring framework_main's bootstrap contract (§6): thread_count
// defaults to logical CPU count, fiber_count defaults to 128,
// log2_work_count defaults to 12. Positive values are kept as given; none
// is capped (a ThreadCount above the logical CPU count stays as is).
func (c Config) normalize() Config {
	if c.ThreadCount <= 0 {
		c.ThreadCount = runtime.NumCPU()
	}
	if c.FiberCount <= 0 {
		c.FiberCount = 128
	}
	if c.Log2WorkCount <= 0 {
		c.Log2WorkCount = 12
	}
	if c.DefaultStackSize <= 0 {
		c.DefaultStackSize = 64 * 1024
	}
	if c.AssertSink == nil {
		c.AssertSink = DefaultAssertSink{}
	}
	return c
}

// readyCapacity returns 2^Log2WorkCount.
func (c Config) readyCapacity() int {
	return 1 << uint(c.Log2WorkCount)
}
