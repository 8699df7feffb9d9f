// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork

import (
	"runtime"
	"runtime/debug"
	"time"
)

// HostInfo reports static facts about the machine the engine is running
// on, the Go-native analogue of the original engine's cpuinfo query (§6).
// It does not report total RAM or huge-page sizes.
type HostInfo struct {
	// CPUThreads is the number of logical CPUs available to the process
	// (runtime.NumCPU()).
	CPUThreads int
	// PageSize is the OS memory page size in bytes.
	PageSize int
	// CPUCores is the number of distinct physical cores, or 0 if the
	// platform has no way to tell cores apart from logical CPUs.
	CPUCores int
	// CPUPackages is the number of distinct physical CPU packages/sockets,
	// or 0 if unknown.
	CPUPackages int
}

// QueryHostInfo gathers [HostInfo] for the current process.
func QueryHostInfo() HostInfo {
	cores, packages := cpuTopology()
	return HostInfo{
		CPUThreads:  runtime.NumCPU(),
		PageSize:    osPageSize(),
		CPUCores:    cores,
		CPUPackages: packages,
	}
}

// RTCCounter returns a monotonically increasing counter suitable for
// coarse wall-clock timing, the Go-native stand-in for the original
// engine's rdtsc-backed rtc_counter() (§6): Go has no portable access to
// a raw cycle counter, so this reads the runtime's monotonic clock
// instead. Pair with [RTCFrequency] to convert a counter delta to
// seconds.
func RTCCounter() int64 {
	return int64(time.Since(rtcEpoch))
}

// rtcEpoch is the monotonic reference point [RTCCounter] counts from.
var rtcEpoch = time.Now()

// RTCFrequency returns the tick rate, in Hz, that [RTCCounter] advances
// at. Since RTCCounter counts nanoseconds rather than CPU cycles, this is
// always 1e9 rather than a measured CPU clock rate.
func RTCFrequency() int64 {
	return 1e9
}

// dumpStackTrace returns the stack trace of the calling goroutine, the Go
// analogue of the original engine's dump_stack_trace debug helper.
func dumpStackTrace() []byte {
	return debug.Stack()
}

// breakpoint traps into an attached debugger, used by [AssertTrap].
func breakpoint() {
	runtime.Breakpoint()
}
