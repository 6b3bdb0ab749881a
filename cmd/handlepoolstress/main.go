// Command handlepoolstress hammers a thread-safe h32.Allocator with
// concurrent acquire/release traffic from many goroutines and reports
// whether it survives with its invariants intact.
//
// go test budgets don't fit a true multi-million-iteration soak test, so
// this is pulled out into its own longer-running binary instead of a
// package-level stress subtest.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/llxisdsh/handlepool/h32"
)

func main() {
	workers := flag.Int("workers", 32, "number of concurrent worker goroutines")
	capacity := flag.Int("capacity", 4096, "allocator capacity")
	iterations := flag.Int("iterations", 200_000, "acquire/release iterations per worker")
	userflagBits := flag.Uint("userflag-bits", 2, "number of userflag bits")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := h32.Config{
		MaxHandles:   uint32(*capacity),
		UserflagBits: uint32(*userflagBits),
	}.WithNonInlinePayload(0).WithThreadSafeLIFO()

	mem := make([]byte, cfg.MemorySizeNeeded())
	alloc, err := h32.New(cfg, mem)
	if err != nil {
		logger.Error("configuration rejected", "err", err)
		os.Exit(1)
	}

	start := time.Now()
	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < *workers; w++ {
		w := w
		g.Go(func() error {
			return runWorker(alloc, w, *iterations, uint32(*userflagBits))
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("stress run failed", "err", err, "elapsed", time.Since(start))
		os.Exit(1)
	}

	logger.Info("stress run passed",
		"workers", *workers,
		"capacity", *capacity,
		"iterations_per_worker", *iterations,
		"elapsed", time.Since(start),
		"final_size", alloc.Size(),
	)
}

// runWorker repeatedly acquires and releases handles, holding a small
// random subset live at a time to exercise both the freelist and
// generation-wraparound paths under contention.
func runWorker(alloc *h32.Allocator, id, iterations int, userflagBits uint32) error {
	rng := rand.New(rand.NewSource(int64(id) + 1))
	held := make([]uint32, 0, 64)

	for i := 0; i < iterations; i++ {
		if len(held) == 0 || rng.Intn(2) == 0 {
			uf := uint32(0)
			if userflagBits > 0 {
				uf = uint32(rng.Intn(1 << userflagBits))
			}
			_, handle, ok := alloc.Acquire(uf)
			if !ok {
				continue
			}
			if !alloc.Valid(handle) {
				return errInvalid(id, handle)
			}
			held = append(held, handle)
			continue
		}

		idx := rng.Intn(len(held))
		handle := held[idx]
		held[idx] = held[len(held)-1]
		held = held[:len(held)-1]

		if _, ok := alloc.Release(handle); !ok {
			return errRelease(id, handle)
		}
	}

	for _, handle := range held {
		alloc.Release(handle)
	}
	return nil
}

func errInvalid(worker int, handle uint32) error {
	return fmt.Errorf("handlepoolstress: worker %d: handle %#x: freshly acquired handle failed Valid()", worker, handle)
}

func errRelease(worker int, handle uint32) error {
	return fmt.Errorf("handlepoolstress: worker %d: handle %#x: release of a handle we were holding failed", worker, handle)
}
