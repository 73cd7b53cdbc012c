package ref_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/refkit/ref"
)

func TestShared_ConcurrentCloneRelease(t *testing.T) {
	const workers = 16
	const rounds = 1000

	s := ref.New(int64(7))
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for range rounds {
				c := s.Clone()
				if *c.Get() != 7 {
					panic("payload corrupted")
				}
				c.Release()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), ref.CountOf(s), "all transient units returned")
	assert.True(t, s.IsUnique())
	s.Release()
}

func TestShared_ConcurrentHoldersReleaseOnce(t *testing.T) {
	const workers = 32

	d := &countingDisposer{}
	s := ref.NewIn(uint64(1), &ref.Options{Disposer: d})

	handles := make([]ref.Shared[uint64], workers)
	for i := range handles {
		handles[i] = s.Clone()
	}
	s.Release()

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range handles {
		go func() {
			defer wg.Done()
			handles[i].Release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, d.calls, "exactly one goroutine performed the final release")
}

func TestCloneIter_HandlesTravelToWorkers(t *testing.T) {
	const n = 24

	s := ref.New(int32(3))
	it := s.CloneMany(n)

	var wg sync.WaitGroup
	var sum int64
	var mu sync.Mutex
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := int64(*h.Get())
			mu.Lock()
			sum += v
			mu.Unlock()
			h.Release()
		}()
	}
	it.Close()
	wg.Wait()

	require.Equal(t, int64(3*n), sum)
	assert.Equal(t, int64(1), ref.CountOf(s))
	s.Release()
}

func TestShared_ConcurrentMakeMut(t *testing.T) {
	const workers = 8

	s := ref.New(100)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		c := s.Clone()
		go func() {
			defer wg.Done()
			// Each goroutine owns its handle; MakeMut gives it a private
			// block to write without racing the others.
			p := c.MakeMut()
			*p++
			if *c.Get() != 101 {
				panic("copy-on-write leaked a shared block")
			}
			c.Release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, *s.Get(), "the source block never saw the writes")
	assert.True(t, s.IsUnique())
	s.Release()
}
