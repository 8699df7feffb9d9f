// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scope_test

import (
	"testing"

	"code.hybscloud.com/fiberwork/scope"
)

// TestReverseOrder covers spec.md §8 property 6 and the S4 scenario:
// registering A, B, C must run C, B, A.
func TestReverseOrder(t *testing.T) {
	var buf []byte
	s := scope.New()
	s.Defer(func() { buf = append(buf, 'A') })
	s.Defer(func() { buf = append(buf, 'B') })
	s.Defer(func() { buf = append(buf, 'C') })
	s.Run()

	if got := string(buf); got != "CBA" {
		t.Fatalf("got %q, want %q", got, "CBA")
	}
}

func TestRunsExactlyOnce(t *testing.T) {
	count := 0
	s := scope.New()
	s.Defer(func() { count++ })
	s.Run()
	s.Run() // second Run is a no-op: the stack was cleared.
	if count != 1 {
		t.Fatalf("ran %d times, want 1", count)
	}
}

func TestUnreachedBlockNeverRuns(t *testing.T) {
	ran := false
	s := scope.New()
	reached := false
	if reached {
		s.Defer(func() { ran = true })
	}
	s.Run()
	if ran {
		t.Fatal("unreached block ran")
	}
}

func TestRunContinuesThroughPanic(t *testing.T) {
	var order []int
	s := scope.New()
	s.Defer(func() { order = append(order, 1) })
	s.Defer(func() { panic("boom") })
	s.Defer(func() { order = append(order, 3) })

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Fatalf("recovered %v, want %q", r, "boom")
			}
		}()
		s.Run()
	}()

	if len(order) != 2 || order[0] != 3 || order[1] != 1 {
		t.Fatalf("order = %v, want [3 1] (both non-panicking blocks ran)", order)
	}
}
