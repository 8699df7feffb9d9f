// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiberwork_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/fiberwork"
)

func TestSpinLockMutualExclusion(t *testing.T) {
	lock := fiberwork.NewSpinLock(nil)
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				lock.Lock()
				counter++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()

	if counter != 16*1000 {
		t.Fatalf("counter = %d, want %d", counter, 16*1000)
	}
}

func TestSpinLockTryLock(t *testing.T) {
	lock := fiberwork.NewSpinLock(nil)
	if !lock.TryLock() {
		t.Fatal("TryLock on an unlocked lock should succeed")
	}
	if lock.TryLock() {
		t.Fatal("TryLock on an already-locked lock should fail")
	}
	lock.Unlock()
	if !lock.TryLock() {
		t.Fatal("TryLock after Unlock should succeed")
	}
}

func TestSpinLockGuard(t *testing.T) {
	lock := fiberwork.NewSpinLock(nil)
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				lock.Guard(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	if counter != 16*1000 {
		t.Fatalf("counter = %d, want %d", counter, 16*1000)
	}
	if !lock.TryLock() {
		t.Fatal("lock should be released after every Guard call returns")
	}
	lock.Unlock()
}

func TestSpinLockGuardUnlocksOnPanic(t *testing.T) {
	lock := fiberwork.NewSpinLock(nil)

	func() {
		defer func() { recover() }()
		lock.Guard(func() { panic("boom") })
	}()

	if !lock.TryLock() {
		t.Fatal("lock should be released even if the guarded fn panics")
	}
	lock.Unlock()
}

type recordingSink struct {
	verdicts []string
}

func (s *recordingSink) Assert(msg string) fiberwork.AssertVerdict {
	s.verdicts = append(s.verdicts, msg)
	return fiberwork.AssertContinue
}

func TestSpinLockDoubleUnlockAsserts(t *testing.T) {
	sink := &recordingSink{}
	lock := fiberwork.NewSpinLock(sink)
	lock.Lock()
	lock.Unlock()
	lock.Unlock()

	if len(sink.verdicts) != 1 {
		t.Fatalf("assertion sink invoked %d times, want 1", len(sink.verdicts))
	}
}
