package dispose

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/joshuapare/refkit/ref"
)

// Background hands blocks to a dedicated goroutine for disposal, keeping
// expensive teardown (large buffers, wrapped strategies that do I/O) off
// the goroutine that happened to drop the last handle.
//
// Blocks are disposed in arrival order. The queue is unbounded: a release
// never blocks on the worker.
type Background struct {
	next ref.Disposer

	mu     sync.Mutex
	cond   *sync.Cond
	q      *queue.Queue
	busy   bool
	closed bool
	done   chan struct{}
}

// NewBackground starts the worker goroutine. Queued blocks are handed to
// next; a nil next means Free.
func NewBackground(next ref.Disposer) *Background {
	if next == nil {
		next = Free
	}
	b := &Background{
		next: next,
		q:    queue.New(),
		done: make(chan struct{}),
	}
	b.cond = sync.NewCond(&b.mu)
	go b.run()
	return b
}

// Dispose queues blk for the worker. After Close the strategy degrades to
// disposing inline, so no block is ever dropped.
func (b *Background) Dispose(blk ref.Block) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.next.Dispose(blk)
		return
	}
	b.q.Add(blk)
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Drain blocks until every block queued so far has been disposed.
func (b *Background) Drain() {
	b.mu.Lock()
	for b.q.Length() > 0 || b.busy {
		b.cond.Wait()
	}
	b.mu.Unlock()
}

// Pending reports how many blocks are queued, not counting one the worker
// may currently be disposing.
func (b *Background) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.q.Length()
}

// Close disposes everything still queued, stops the worker, and returns
// ErrClosed on a second call.
func (b *Background) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()
	<-b.done
	return nil
}

func (b *Background) run() {
	b.mu.Lock()
	for {
		for b.q.Length() == 0 && !b.closed {
			b.cond.Wait()
		}
		if b.closed && b.q.Length() == 0 {
			b.cond.Broadcast()
			b.mu.Unlock()
			close(b.done)
			return
		}
		blk := b.q.Remove().(ref.Block)
		b.busy = true
		b.mu.Unlock()

		// Outside the lock: next may be slow, and Dispose must stay
		// callable while it runs.
		b.next.Dispose(blk)

		b.mu.Lock()
		b.busy = false
		b.cond.Broadcast()
	}
}
