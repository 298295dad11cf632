package crawler_test

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/nhatthm/wscrap/internal/crawler"
	"github.com/nhatthm/wscrap/internal/fetcher"
)

// fakeFetcher serves pages from memory and records the fetched urls.
type fakeFetcher struct {
	pages     map[string]*fetcher.Response
	redirects map[string]string

	mu      sync.Mutex
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetcher.Response, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()

	if target, ok := f.redirects[url]; ok {
		url = target
	}

	resp, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: %d", fetcher.ErrUnexpectedStatusCode, http.StatusNotFound)
	}

	return resp, nil
}

func (f *fakeFetcher) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]string, len(f.fetched))
	copy(result, f.fetched)

	sort.Strings(result)

	return result
}

type fetcherFunc func(ctx context.Context, url string) (*fetcher.Response, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) (*fetcher.Response, error) {
	return f(ctx, url)
}

func page(url, contentType, body string) *fetcher.Response {
	return &fetcher.Response{
		URL:        url,
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       body,
	}
}

func htmlPage(url, body string) *fetcher.Response {
	return page(url, "text/html; charset=utf-8", body)
}

// recordSink collects the records in memory.
type recordSink struct {
	mu      sync.Mutex
	records []crawler.PageRecord
}

func (s *recordSink) Write(_ context.Context, r crawler.PageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, r)

	return nil
}

func (s *recordSink) Records() []crawler.PageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]crawler.PageRecord, len(s.records))
	copy(result, s.records)

	sort.Slice(result, func(i, j int) bool {
		return result[i].URL < result[j].URL
	})

	return result
}

func (s *recordSink) URLs() []string {
	records := s.Records()
	urls := make([]string, 0, len(records))

	for _, r := range records {
		urls = append(urls, r.URL)
	}

	return urls
}

func crawlContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	return ctx
}
