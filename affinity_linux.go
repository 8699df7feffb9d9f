// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package fiberwork

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// pinToCPU locks the calling goroutine to its OS thread and pins that
// thread to logical CPU (index % runtime.NumCPU()), round-robin, the same
// scheme go-ublk's queue runner uses for ublk_drv's per-queue thread
// affinity requirement (§4.2: "a worker thread should stay resident on one
// core for the engine's lifetime to keep per-core fiber/ready-ring
// caches hot").
func pinToCPU(index int) error {
	runtime.LockOSThread()

	n := runtime.NumCPU()
	if n == 0 {
		return nil
	}
	cpu := index % n

	var mask unix.CPUSet
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}

func osPageSize() int {
	return int(unix.Getpagesize())
}

// cpuTopology parses /proc/cpuinfo for the number of distinct physical
// cores and physical packages, the Linux analogue of the original
// engine's cpuinfo query (§6). Every "physical id" value seen is a
// package; every distinct (physical id, core id) pair is a core. Returns
// (0, 0) if /proc/cpuinfo cannot be read, e.g. inside some containers.
func cpuTopology() (cores, packages int) {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	pkgSeen := make(map[int]struct{})
	coreSeen := make(map[[2]int]struct{})
	curPkg, havePkg := 0, false

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "physical id":
			n, err := strconv.Atoi(val)
			if err != nil {
				continue
			}
			curPkg, havePkg = n, true
			pkgSeen[n] = struct{}{}
		case "core id":
			if !havePkg {
				continue
			}
			n, err := strconv.Atoi(val)
			if err != nil {
				continue
			}
			coreSeen[[2]int{curPkg, n}] = struct{}{}
		}
	}
	return len(coreSeen), len(pkgSeen)
}
