// Package crawler crawls pages from seed urls and follows their same-domain links up to a depth.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bool64/ctxd"
	"golang.org/x/sync/errgroup"

	"github.com/nhatthm/wscrap/internal/extractor"
	"github.com/nhatthm/wscrap/internal/fetcher"
	"github.com/nhatthm/wscrap/internal/footprint"
)

const (
	// DefaultDepth is the default number of link levels followed from the seeds.
	DefaultDepth = 3
	// DefaultNumWorkers is the default number of fetch workers.
	DefaultNumWorkers = 10
	// DefaultProgressInterval is the default interval for logging the crawl progress.
	DefaultProgressInterval = time.Second

	mediaTypeHTML = "text/html"
)

// Crawler crawls pages with a fixed number of workers sharing a frontier and a visited set.
type Crawler struct {
	fetcher    fetcher.Fetcher
	extractor  extractor.PageExtractor
	classifier *extractor.ResourceClassifier
	log        ctxd.Logger

	// numWorkers is the number of workers fetching pages concurrently. Default value is DefaultNumWorkers.
	numWorkers int
	// depth is the depth of the seeds. Default value is DefaultDepth.
	depth int
	// progressInterval is the interval of the progress log, 0 disables it.
	progressInterval time.Duration
}

// Crawl seeds the frontier with the urls, runs the workers until the frontier is drained and writes a record to the sink for every HTML page.
//
// A failure while processing a page is logged and never stops the crawl. Crawl returns ErrOperationCanceled if the context is canceled before the
// frontier is drained.
func (c *Crawler) Crawl(ctx context.Context, seeds []string, sink Sink) error {
	frontier := NewFrontier()
	visited := NewVisitedSet()

	for _, seed := range seeds {
		_ = frontier.Push(WorkItem{URL: NormalizeURL(seed), Depth: c.depth}) // nolint: errcheck // The frontier is not closed yet.
	}

	c.log.Info(ctx, "started crawling", "crawler.num_seeds", len(seeds), "crawler.depth", c.depth, "crawler.num_workers", c.numWorkers)

	trackCtx, stopTracking := context.WithCancel(ctx)
	defer stopTracking()

	go footprint.Track(trackCtx, c.log, c.progressInterval, func() []any {
		return []any{
			"crawler.frontier.pending", frontier.Pending(),
			"crawler.frontier.queued", frontier.Len(),
			"crawler.visited", visited.Len(),
		}
	})

	var g errgroup.Group

	for i := 0; i < c.numWorkers; i++ {
		ctx := ctxd.AddFields(ctx, "crawler.worker_id", i)

		g.Go(func() error {
			c.work(ctx, frontier, visited, sink)

			return nil
		})
	}

	err := frontier.Wait(ctx)
	if err == nil {
		// Canceled items are marked as done too, so the frontier may drain because of the cancellation.
		err = ctx.Err()
	}

	// Workers finish their current item and stop at their next pop.
	frontier.Close()

	_ = g.Wait() // nolint: errcheck // Workers never return an error.

	c.log.Debug(ctx, "stopped all crawler workers")

	if err != nil {
		c.log.Warn(ctx, "crawling canceled", "error", err, "crawler.visited", visited.Len())

		return ErrOperationCanceled
	}

	c.log.Info(ctx, "finished crawling", "crawler.visited", visited.Len())

	return nil
}

// work pops and processes items until the frontier is closed or the context is done.
func (c *Crawler) work(ctx context.Context, frontier *Frontier, visited *VisitedSet, sink Sink) {
	c.log.Debug(ctx, "started crawler worker")

	for {
		item, err := frontier.Pop(ctx)
		if err != nil {
			c.log.Debug(ctx, "stopped crawler worker", "reason", err.Error())

			return
		}

		c.process(ctx, item, frontier, visited, sink)
	}
}

// process carries a popped item to completion. The item is always marked as done, whatever happens.
func (c *Crawler) process(ctx context.Context, item WorkItem, frontier *Frontier, visited *VisitedSet, sink Sink) {
	defer frontier.Done()

	startTime := time.Now()
	ctx = ctxd.AddFields(ctx, "crawler.url", item.URL, "crawler.depth", item.Depth)

	err := c.visit(ctx, item, frontier, visited, sink)

	switch {
	case err == nil:
		c.log.Debug(ctx, "crawled page", "crawler.duration", time.Since(startTime).String())

	case errors.Is(err, ErrAlreadyVisited):
		c.log.Info(ctx, "already visited")

	default:
		c.log.Warn(ctx, "could not crawl page", "error", err)
	}
}

func (c *Crawler) visit(ctx context.Context, item WorkItem, frontier *Frontier, visited *VisitedSet, sink Sink) error {
	if !visited.TryClaim(item.URL) {
		return ErrAlreadyVisited
	}

	c.log.Info(ctx, "visit")

	resp, err := c.fetcher.Fetch(ctx, item.URL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}

	ctx = ctxd.AddFields(ctx, "crawler.final_url", resp.URL)

	// The redirect target is claimed too, so that the same page is not processed again through another spelling of its url.
	if resp.URL != item.URL && !visited.TryClaim(resp.URL) {
		return fmt.Errorf("%w: redirected to %s", ErrAlreadyVisited, resp.URL)
	}

	if mt := resp.MediaType(); mt != mediaTypeHTML {
		return fmt.Errorf("%w: %s", ErrUnsupportedContentType, mt)
	}

	page, err := c.extractor.Extract(ctx, resp.URL, resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}

	if err := sink.Write(ctx, PageRecord{URL: resp.URL, Title: page.Title, Links: page.Links}); err != nil {
		return fmt.Errorf("%w: %w", ErrEmit, err)
	}

	c.log.Debug(ctx, "emitted page record", "crawler.num_links", len(page.Links))

	if item.Depth > 0 {
		c.expand(ctx, item, resp.URL, page.Links, frontier, visited)
	}

	return nil
}

// expand pushes the links that are on the same host as the page to the frontier, with one less depth.
//
// The host is the one of the final url of the page, not the one of the seed. Links that are not http(s), that point to resources or that have already
// been visited are skipped.
func (c *Crawler) expand(ctx context.Context, item WorkItem, pageURL string, links []extractor.Link, frontier *Frontier, visited *VisitedSet) {
	page, err := url.Parse(pageURL)
	if err != nil {
		c.log.Warn(ctx, "could not parse page url for expanding links", "error", err)

		return
	}

	numPushed := 0

	for _, link := range links {
		target, ok := c.crawlableURL(page, link.URL)
		if !ok || visited.Has(target) {
			continue
		}

		if err := frontier.Push(WorkItem{URL: target, Depth: item.Depth - 1}); err != nil {
			c.log.Debug(ctx, "stopped expanding links", "reason", err.Error())

			break
		}

		numPushed++
	}

	c.log.Debug(ctx, "expanded links", "crawler.num_links", len(links), "crawler.num_pushed", numPushed)
}

// crawlableURL returns the url to push for the link, in the same spelling as the fetched urls.
func (c *Crawler) crawlableURL(page *url.URL, link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	if !strings.EqualFold(u.Host, page.Host) {
		return "", false
	}

	if c.classifier.IsResource(link) {
		return "", false
	}

	return canonicalURL(u), true
}

// NewCrawler creates a new Crawler.
//
// Usage:
//
//	pool := extractor.NewPool(runtime.NumCPU(), extractor.NewHTMLExtractor())
//	defer pool.Close()
//
//	c := NewCrawler(
//		WithDepth(1),
//		WithExtractor(pool),
//		WithFetcher(fetcher.NewHTTPFetcher(fetcher.WithTimeout(5*time.Second))),
//	)
//
//	err := c.Crawl(ctx, []string{"http://example.com"}, SinkFunc(func(ctx context.Context, r PageRecord) error {
//		fmt.Println(r.URL, r.Title)
//
//		return nil
//	}))
func NewCrawler(opts ...Option) *Crawler {
	c := &Crawler{
		log: ctxd.NoOpLogger{},

		numWorkers:       DefaultNumWorkers,
		depth:            DefaultDepth,
		progressInterval: DefaultProgressInterval,
	}

	for _, opt := range opts {
		opt.applyCrawlerOption(c)
	}

	if c.numWorkers < 1 {
		c.numWorkers = DefaultNumWorkers
	}

	if c.depth < 0 {
		c.depth = DefaultDepth
	}

	if c.classifier == nil {
		c.classifier = extractor.NewResourceClassifier()
	}

	if c.fetcher == nil {
		c.fetcher = fetcher.NewHTTPFetcher(fetcher.WithLogger(c.log))
	}

	if c.extractor == nil {
		c.extractor = extractor.NewHTMLExtractor(c.classifier)
	}

	return c
}

// Option is option to set up Crawler.
type Option interface {
	applyCrawlerOption(c *Crawler)
}

type crawlerOptionFunc func(c *Crawler)

func (f crawlerOptionFunc) applyCrawlerOption(c *Crawler) {
	f(c)
}

// WithLogger sets logger for Crawler.
func WithLogger(l ctxd.Logger) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.log = l
	})
}

// WithNumWorkers sets number of workers for Crawler.
func WithNumWorkers(numWorkers int) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.numWorkers = numWorkers
	})
}

// WithDepth sets the depth of the seeds. With depth 0, only the seeds are crawled.
func WithDepth(depth int) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.depth = depth
	})
}

// WithFetcher sets the fetcher for Crawler.
func WithFetcher(f fetcher.Fetcher) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.fetcher = f
	})
}

// WithExtractor sets the page extractor for Crawler, usually an *extractor.Pool.
func WithExtractor(e extractor.PageExtractor) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.extractor = e
	})
}

// WithResourceClassifier sets the classifier that prevents resources from being crawled.
func WithResourceClassifier(rc *extractor.ResourceClassifier) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.classifier = rc
	})
}

// WithProgressInterval sets the interval of the progress log. Use 0 to disable it.
func WithProgressInterval(d time.Duration) Option {
	return crawlerOptionFunc(func(c *Crawler) {
		c.progressInterval = d
	})
}
