package extractor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrPoolClosed indicates that the pool does not accept extractions anymore.
	ErrPoolClosed = errors.New("extractor pool is closed")
	// ErrExtractionPanicked indicates that the extraction of a document panicked.
	ErrExtractionPanicked = errors.New("extraction panicked")
)

var _ PageExtractor = (*Pool)(nil)

// Pool runs extractions on a fixed number of goroutines, sized independently of the callers.
//
// A caller submits a document and waits for the result without holding anything else, so a burst of large pages only queues up in the pool and never
// blocks the callers that are waiting for the network.
type Pool struct {
	extractor PageExtractor
	tasks     chan extractTask
	done      chan struct{}
	closeOnce sync.Once
	group     errgroup.Group
}

type extractTask struct {
	ctx     context.Context // nolint: containedctx // The context of the caller, carried to the worker.
	baseURL string
	doc     string
	result  chan<- extractResult
}

type extractResult struct {
	page Page
	err  error
}

// Extract submits the document to the pool and waits for the result.
//
// It returns ErrPoolClosed if the pool is closed before the document is picked up, or the context error if the context is done first.
func (p *Pool) Extract(ctx context.Context, baseURL string, doc string) (Page, error) {
	resultCh := make(chan extractResult, 1)
	t := extractTask{ctx: ctx, baseURL: baseURL, doc: doc, result: resultCh}

	select {
	case <-p.done:
		return Page{}, ErrPoolClosed

	case <-ctx.Done():
		return Page{}, ctx.Err()

	case p.tasks <- t:
	}

	select {
	case <-ctx.Done():
		return Page{}, ctx.Err()

	case r := <-resultCh:
		return r.page, r.err
	}
}

// Close stops accepting new documents and waits for the running extractions to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})

	_ = p.group.Wait() // nolint: errcheck // Pool workers never return an error.
}

func (p *Pool) work() error {
	for {
		select {
		case <-p.done:
			return nil

		case t := <-p.tasks:
			t.result <- p.run(t)
		}
	}
}

func (p *Pool) run(t extractTask) (r extractResult) {
	defer func() {
		if v := recover(); v != nil {
			r = extractResult{err: fmt.Errorf("%w: %v", ErrExtractionPanicked, v)}
		}
	}()

	page, err := p.extractor.Extract(t.ctx, t.baseURL, t.doc)

	return extractResult{page: page, err: err}
}

// NewPool starts a pool of size goroutines running e. If size is smaller than 1, the number of CPUs is used. If e is nil, an HTMLExtractor is used.
//
//	p := NewPool(4, NewHTMLExtractor())
//	defer p.Close()
//
//	page, err := p.Extract(ctx, "http://example.com/", doc)
func NewPool(size int, e PageExtractor) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}

	if e == nil {
		e = NewHTMLExtractor()
	}

	p := &Pool{
		extractor: e,
		tasks:     make(chan extractTask),
		done:      make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.group.Go(p.work)
	}

	return p
}
