package main

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/refkit/dispose"
	"github.com/joshuapare/refkit/ref"
)

var (
	stressOps        int
	stressWorkers    int
	stressSeed       int64
	stressBatch      int
	stressSlices     bool
	stressMmap       bool
	stressBackground bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressOps, "ops", 100000, "Operations per worker")
	cmd.Flags().IntVar(&stressWorkers, "workers", 4, "Concurrent workers")
	cmd.Flags().Int64Var(&stressSeed, "seed", 42, "Workload seed")
	cmd.Flags().IntVar(&stressBatch, "batch", 8, "CloneMany batch size")
	cmd.Flags().BoolVar(&stressSlices, "slices", false, "Use slice blocks instead of scalars")
	cmd.Flags().BoolVar(&stressMmap, "mmap", false, "Allocate from the mmap arena")
	cmd.Flags().BoolVar(&stressBackground, "background", false, "Dispose on a background goroutine")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Run a randomized clone/release workload and verify block accounting",
		Long: `The stress command hammers blocks with concurrent clones, releases,
copy-on-write mutations, and batched clone hand-offs, then verifies that
every allocated block was disposed exactly once.

Example:
  refbench stress --ops 500000 --workers 8
  refbench stress --slices --mmap --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
}

type stressResult struct {
	Ops         int64   `json:"ops"`
	Allocations int64   `json:"allocations"`
	Disposals   int64   `json:"disposals"`
	DurationMS  float64 `json:"duration_ms"`
	OpsPerSec   float64 `json:"ops_per_sec"`
}

// tallyDisposer counts disposals and frees the block.
type tallyDisposer struct {
	calls atomic.Int64
}

func (d *tallyDisposer) Dispose(b ref.Block) {
	d.calls.Add(1)
	b.Free()
}

func runStress() error {
	if stressOps < 1 || stressWorkers < 1 || stressBatch < 0 {
		return fmt.Errorf("ops and workers must be positive, batch non-negative")
	}
	tally := &tallyDisposer{}

	var strategy ref.Disposer = tally
	var bg *dispose.Background
	if stressBackground {
		bg = dispose.NewBackground(tally)
		strategy = bg
	}
	opts := &ref.Options{Disposer: strategy}
	if stressMmap {
		opts.Arena = ref.ArenaMmap
	}

	printVerbose("running %d workers x %d ops (seed %d)\n", stressWorkers, stressOps, stressSeed)

	var allocs, ops atomic.Int64
	start := time.Now()
	var wg sync.WaitGroup
	for w := range stressWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(stressSeed + int64(w)))
			if stressSlices {
				stressSliceWorker(rng, opts, &allocs, &ops)
			} else {
				stressScalarWorker(rng, opts, &allocs, &ops)
			}
		}()
	}
	wg.Wait()

	if bg != nil {
		bg.Drain()
		if err := bg.Close(); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	if got, want := tally.calls.Load(), allocs.Load(); got != want {
		return fmt.Errorf("block accounting broken: %d allocated, %d disposed", want, got)
	}

	res := stressResult{
		Ops:         ops.Load(),
		Allocations: allocs.Load(),
		Disposals:   tally.calls.Load(),
		DurationMS:  float64(elapsed.Microseconds()) / 1000,
		OpsPerSec:   float64(ops.Load()) / elapsed.Seconds(),
	}
	if jsonOut {
		return printJSON(res)
	}
	fmt.Printf("ops:         %d\n", res.Ops)
	fmt.Printf("allocations: %d\n", res.Allocations)
	fmt.Printf("disposals:   %d\n", res.Disposals)
	fmt.Printf("duration:    %.1f ms\n", res.DurationMS)
	fmt.Printf("throughput:  %.0f ops/s\n", res.OpsPerSec)
	fmt.Println("accounting:  every block disposed exactly once")
	return nil
}

// stressScalarWorker mutates a private pool of handles. Handles never
// cross workers, so uniqueness checks inside one iteration are stable.
func stressScalarWorker(rng *rand.Rand, opts *ref.Options, allocs, ops *atomic.Int64) {
	type payload = [4]uint64
	pool := make([]ref.Shared[payload], 0, 64)
	defer func() {
		for i := range pool {
			pool[i].Release()
		}
	}()

	for range stressOps {
		ops.Add(1)
		switch op := rng.Intn(10); {
		case op < 3 || len(pool) == 0:
			if len(pool) == cap(pool) {
				pool[0].Release()
				pool = append(pool[:0], pool[1:]...)
			}
			v := payload{rng.Uint64(), rng.Uint64(), rng.Uint64(), rng.Uint64()}
			pool = append(pool, ref.NewIn(v, opts))
			allocs.Add(1)
		case op < 6:
			c := pool[rng.Intn(len(pool))].Clone()
			if len(pool) < cap(pool) {
				pool = append(pool, c)
			} else {
				c.Release()
			}
		case op < 8:
			i := rng.Intn(len(pool))
			pool[i].Release()
			pool[i] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]
		case op < 9:
			i := rng.Intn(len(pool))
			if !pool[i].IsUnique() {
				allocs.Add(1) // copy-on-write allocates a fresh block
			}
			pool[i].MakeMut()[0] = rng.Uint64()
		default:
			it := pool[rng.Intn(len(pool))].CloneMany(stressBatch)
			for {
				h, ok := it.Next()
				if !ok {
					break
				}
				if len(pool) < cap(pool) {
					pool = append(pool, h)
				} else {
					h.Release()
				}
			}
			it.Close()
		}
	}
}

func stressSliceWorker(rng *rand.Rand, opts *ref.Options, allocs, ops *atomic.Int64) {
	pool := make([]ref.Slice[uint64], 0, 64)
	defer func() {
		for i := range pool {
			pool[i].Release()
		}
	}()

	for range stressOps {
		ops.Add(1)
		switch op := rng.Intn(10); {
		case op < 3 || len(pool) == 0:
			if len(pool) == cap(pool) {
				pool[0].Release()
				pool = append(pool[:0], pool[1:]...)
			}
			v := make([]uint64, 1+rng.Intn(32))
			for i := range v {
				v[i] = rng.Uint64()
			}
			pool = append(pool, ref.NewSliceIn(v, opts))
			allocs.Add(1)
		case op < 6:
			c := pool[rng.Intn(len(pool))].Clone()
			if len(pool) < cap(pool) {
				pool = append(pool, c)
			} else {
				c.Release()
			}
		case op < 8:
			i := rng.Intn(len(pool))
			pool[i].Release()
			pool[i] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]
		case op < 9:
			i := rng.Intn(len(pool))
			if !pool[i].IsUnique() {
				allocs.Add(1)
			}
			m := pool[i].MakeMut()
			m[rng.Intn(len(m))] = rng.Uint64()
		default:
			it := pool[rng.Intn(len(pool))].CloneMany(stressBatch)
			for {
				h, ok := it.Next()
				if !ok {
					break
				}
				if len(pool) < cap(pool) {
					pool = append(pool, h)
				} else {
					h.Release()
				}
			}
			it.Close()
		}
	}
}
