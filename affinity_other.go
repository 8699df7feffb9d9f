// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package fiberwork

import (
	"os"
	"runtime"
)

// pinToCPU locks the calling goroutine to its OS thread. CPU-set affinity
// is a Linux-only syscall (SchedSetaffinity); other platforms keep the
// thread pin without a core assignment.
func pinToCPU(index int) error {
	runtime.LockOSThread()
	return nil
}

func osPageSize() int {
	return os.Getpagesize()
}

// cpuTopology has no portable, syscall-free way to enumerate physical
// cores and packages outside Linux's /proc/cpuinfo; other platforms
// report unknown rather than guess from logical CPU count.
func cpuTopology() (cores, packages int) {
	return 0, 0
}
