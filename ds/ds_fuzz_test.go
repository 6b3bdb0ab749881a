package ds

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

// TestConcurrentReadersAgainstSingleWriter runs several read-only goroutines
// (Valid, DenseIndex) alongside a single writer goroutine driving
// acquire/release churn, all serialized through one mutex (ds.Allocator
// itself carries no internal synchronization — that is the writer's job,
// same as the underlying h32.Allocator's default LIFO policy). It is a
// property test: any reader observing a live handle whose DenseIndex falls
// outside [0, Size()) fails the run via errgroup's first-error
// propagation, rather than a hand-rolled sync.WaitGroup plus shared error
// variable.
func TestConcurrentReadersAgainstSingleWriter(t *testing.T) {
	const capacity = 64
	const rounds = 4000
	const readers = 8

	d := newDS(t, capacity)

	var mu sync.Mutex
	live := make([]uint32, 0, capacity)
	round := 0

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		for {
			mu.Lock()
			if round >= rounds {
				mu.Unlock()
				return nil
			}
			r := round
			if len(live) < capacity-1 && (r%3 != 0 || len(live) == 0) {
				h, dense, ok := d.Acquire(0)
				if ok {
					if got := d.DenseIndex(h); got != dense {
						mu.Unlock()
						return fmt.Errorf("round %d: freshly acquired handle reports dense index %d, want %d", r, got, dense)
					}
					live = append(live, h)
				}
			} else {
				h := live[0]
				live = live[1:]
				if _, _, _, ok := d.Release(h); !ok {
					mu.Unlock()
					return fmt.Errorf("round %d: release of live handle %#x failed", r, h)
				}
			}
			round++
			mu.Unlock()
		}
	})

	for r := 0; r < readers; r++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}

				// Every read of d (including DenseIndex) happens while
				// holding mu, for the same reason the writer's
				// Acquire/Release do: ds.Allocator is a non-thread-safe
				// LIFO allocator composed on top of h32's default policy,
				// so all access — reads included — must be serialized by
				// the caller.
				mu.Lock()
				size := d.Size()
				var badHandle, badDense uint32
				bad := false
				for _, h := range live {
					if dense := d.DenseIndex(h); dense >= size {
						bad, badHandle, badDense = true, h, dense
						break
					}
				}
				done := round >= rounds
				mu.Unlock()

				if bad {
					return fmt.Errorf("handle %#x reports dense index %d >= size %d", badHandle, badDense, size)
				}
				if done {
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
