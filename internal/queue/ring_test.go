// © Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue_test

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiberwork/internal/queue"
	"code.hybscloud.com/iox"
)

func TestRingBasic(t *testing.T) {
	q := queue.NewRing[int](3)

	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}

	for i := range 4 {
		if err := q.Enqueue(i + 100); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}

	if err := q.Enqueue(999); !errors.Is(err, queue.ErrWouldBlock) {
		t.Fatalf("Enqueue on full: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		v, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if v != i+100 {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, v, i+100)
		}
	}

	if _, err := q.Dequeue(); !errors.Is(err, queue.ErrWouldBlock) {
		t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
	}
}

// TestRingLinearizability stresses concurrent producers/consumers and
// checks the multiset of dequeued values is a subset of the enqueued
// multiset, with no value observed twice (spec.md §8 property 4).
func TestRingLinearizability(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}

	const (
		numProducers  = 8
		itemsPerProd  = 2000
		expectedTotal = numProducers * itemsPerProd
	)

	q := queue.NewRing[int](1024)
	seen := make([]atomix.Int32, expectedTotal)
	var consumed atomix.Int64
	var timedOut atomix.Bool

	var wg sync.WaitGroup
	deadline := time.Now().Add(10 * time.Second)

	for p := range numProducers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			for i := range itemsPerProd {
				v := id*itemsPerProd + i
				for q.Enqueue(v) != nil {
					if time.Now().After(deadline) {
						timedOut.Store(true)
						return
					}
					backoff.Wait()
				}
				backoff.Reset()
			}
		}(p)
	}

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for consumed.Load() < expectedTotal {
				v, err := q.Dequeue()
				if err != nil {
					if time.Now().After(deadline) {
						timedOut.Store(true)
						return
					}
					backoff.Wait()
					continue
				}
				backoff.Reset()
				if v < 0 || v >= expectedTotal {
					t.Errorf("dequeued out-of-range value %d", v)
					continue
				}
				if seen[v].Add(1) != 1 {
					t.Errorf("value %d dequeued more than once", v)
				}
				consumed.Add(1)
			}
		}()
	}

	wg.Wait()

	if timedOut.Load() {
		t.Fatal("test timed out before draining")
	}
	if got := consumed.Load(); got != expectedTotal {
		t.Fatalf("consumed %d items, want %d", got, expectedTotal)
	}

	var missing []int
	for i, c := range seen {
		if c.Load() != 1 {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		t.Fatalf("values never seen exactly once: %v", missing)
	}
}

func TestRingLen(t *testing.T) {
	q := queue.NewRing[int](4)
	if got := q.Len(); got != 0 {
		t.Fatalf("Len() on empty ring = %d, want 0", got)
	}
	_ = q.Enqueue(1)
	_ = q.Enqueue(2)
	if got := q.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	if _, err := q.Dequeue(); err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got := q.Len(); got != 1 {
		t.Fatalf("Len() after one dequeue = %d, want 1", got)
	}
}
