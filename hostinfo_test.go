// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork_test

import (
	"testing"

	"code.hybscloud.com/fiberwork"
)

func TestQueryHostInfo(t *testing.T) {
	info := fiberwork.QueryHostInfo()
	if info.CPUThreads <= 0 {
		t.Fatalf("CPUThreads = %d, want > 0", info.CPUThreads)
	}
	if info.PageSize <= 0 {
		t.Fatalf("PageSize = %d, want > 0", info.PageSize)
	}
	// CPUCores/CPUPackages are best-effort (0 where unsupported or
	// unreadable), so only check they never exceed the logical CPU count.
	if info.CPUCores > info.CPUThreads {
		t.Fatalf("CPUCores = %d, want <= CPUThreads %d", info.CPUCores, info.CPUThreads)
	}
	if info.CPUPackages > info.CPUThreads {
		t.Fatalf("CPUPackages = %d, want <= CPUThreads %d", info.CPUPackages, info.CPUThreads)
	}
}

func TestRTCCounterAdvances(t *testing.T) {
	if fiberwork.RTCFrequency() <= 0 {
		t.Fatalf("RTCFrequency() = %d, want > 0", fiberwork.RTCFrequency())
	}
	first := fiberwork.RTCCounter()
	second := fiberwork.RTCCounter()
	if second < first {
		t.Fatalf("RTCCounter() went backwards: %d then %d", first, second)
	}
}
