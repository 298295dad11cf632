package crawler

import (
	"context"
	"sync"
)

// Frontier is an unbounded FIFO of work items shared by the workers.
//
// Every pushed item is pending until Done is called for it. The frontier is quiescent when nothing is pending, which means no item is queued and no
// worker is processing one. Every item returned by Pop must be followed by exactly one call to Done, or the frontier never becomes quiescent.
type Frontier struct {
	mu      sync.Mutex
	items   []WorkItem
	pending int
	closed  bool

	// pushed is closed and replaced whenever an item is pushed or the frontier is closed, to wake up the waiting Pop calls.
	pushed chan struct{}
	// idle is closed and replaced whenever the pending count drops to zero.
	idle chan struct{}
}

// Push appends the item to the frontier and increments the pending count.
func (f *Frontier) Push(item WorkItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFrontierClosed
	}

	f.items = append(f.items, item)
	f.pending++

	close(f.pushed)
	f.pushed = make(chan struct{})

	return nil
}

// Pop removes the first item of the frontier. It blocks until an item is available, the frontier is closed or the context is done.
//
// Once the frontier is closed, Pop returns ErrFrontierClosed even if there are items left.
func (f *Frontier) Pop(ctx context.Context) (WorkItem, error) {
	for {
		f.mu.Lock()

		if f.closed {
			f.mu.Unlock()

			return WorkItem{}, ErrFrontierClosed
		}

		if len(f.items) > 0 {
			item := f.items[0]
			f.items[0] = WorkItem{}
			f.items = f.items[1:]

			f.mu.Unlock()

			return item, nil
		}

		pushed := f.pushed

		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return WorkItem{}, ctx.Err()

		case <-pushed:
		}
	}
}

// Done marks a popped item as processed and decrements the pending count.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending == 0 {
		panic("crawler: Frontier.Done called more times than Push")
	}

	f.pending--

	if f.pending == 0 {
		close(f.idle)
		f.idle = make(chan struct{})
	}
}

// Wait blocks until the pending count is zero or the context is done.
func (f *Frontier) Wait(ctx context.Context) error {
	f.mu.Lock()

	if f.pending == 0 {
		f.mu.Unlock()

		return nil
	}

	idle := f.idle

	f.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()

	case <-idle:
		return nil
	}
}

// Close stops the frontier. Pending Pop calls return ErrFrontierClosed and so do the next Push and Pop calls.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.closed = true

	close(f.pushed)
}

// Pending returns the number of items that have been pushed but not marked as done.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pending
}

// Len returns the number of items waiting to be popped.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.items)
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		pushed: make(chan struct{}),
		idle:   make(chan struct{}),
	}
}
