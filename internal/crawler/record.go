package crawler

import (
	"context"
	"net/url"
	"strings"

	"github.com/nhatthm/wscrap/internal/extractor"
)

// WorkItem is an url waiting in the frontier with the number of link levels that can still be followed from it.
type WorkItem struct {
	URL   string
	Depth int
}

// PageRecord is the output of a successfully crawled HTML page.
type PageRecord struct {
	URL   string           `json:"url"` // The final url, after redirects.
	Title string           `json:"title"`
	Links []extractor.Link `json:"links"`
}

// Sink receives the page records. It is shared by all the workers and must be safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, r PageRecord) error
}

// SinkFunc is a function that implements Sink.
type SinkFunc func(ctx context.Context, r PageRecord) error

// Write calls f(ctx, r).
func (f SinkFunc) Write(ctx context.Context, r PageRecord) error {
	return f(ctx, r)
}

// NormalizeURL prefixes the url with http:// when it has no scheme, and gives an empty path the root path.
//
//   - example.com: http://example.com/
//   - example.com?q=1: http://example.com/?q=1
//   - https://example.com/path: https://example.com/path
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)

	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return s
	}

	return canonicalURL(u)
}

// canonicalURL spells "http://example.com" and "http://example.com/" the same way, the visited set compares the strings.
func canonicalURL(u *url.URL) string {
	if u.Path == "" && u.Opaque == "" && u.Host != "" {
		c := *u
		c.Path = "/"

		return c.String()
	}

	return u.String()
}
