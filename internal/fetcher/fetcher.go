// Package fetcher retrieves pages over HTTP.
package fetcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bool64/ctxd"
	"golang.org/x/net/html/charset"
)

const (
	// ErrUnexpectedStatusCode indicates that the server did not answer with a 2xx status code.
	ErrUnexpectedStatusCode = Error("unexpected status code")
)

const (
	// DefaultTimeout is the default total timeout for requesting an url, including reading the body.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent is the default user agent to disguise.
	DefaultUserAgent = `Mozilla/5.0 (X11; Linux x86_64; rv:78.0) Gecko/20100101 Firefox/78.0`

	// sniffLen is used for detecting content type. See http.sniffLen.
	sniffLen = 512

	mediaTypeHTML = "text/html"
)

// Response is a fetched page.
type Response struct {
	URL         string // The final url, after following the redirects.
	StatusCode  int
	Header      http.Header
	ContentType string // The Content-Type header, or the detected one if the header is missing.
	Body        string // Decoded to UTF-8. Only read for HTML content, empty otherwise.
}

// MediaType returns the media type of the response, without the parameters.
//
// It uses ContentType, then the Content-Type header. If both are missing, the media type is detected from the first bytes of the body. See
// https://pkg.go.dev/net/http#DetectContentType.
func (r Response) MediaType() string {
	contentType := r.ContentType
	if contentType == "" {
		contentType = r.Header.Get("Content-Type")
	}

	if contentType == "" {
		sniff := r.Body
		if len(sniff) > sniffLen {
			sniff = sniff[:sniffLen]
		}

		contentType = http.DetectContentType([]byte(sniff))
	}

	return mediaType(contentType)
}

// Fetcher fetches an url.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher fetches pages with a GET request. The user agent and the timeout are set once and shared by all the requests.
type HTTPFetcher struct {
	client    *http.Client
	log       ctxd.Logger
	userAgent string
}

// Fetch sends a GET request and reads the response.
//
// Redirects are followed to completion and the final url is reported in the response. Network failures, timeouts and non-2xx status codes are errors.
// The body is read only if the response is an HTML page. When the Content-Type header is missing, the media type is detected from the first bytes of
// the body.
func (f HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	ctx = ctxd.AddFields(ctx,
		"http.url", rawURL,
		"http.timeout", f.client.Timeout.String(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.log.Debug(ctx, "failed to create http request", "error", err)

		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	f.log.Debug(ctx, "send http request", "http.user_agent", f.userAgent)

	startTime := time.Now()
	resp, err := f.client.Do(req)

	if err != nil {
		f.log.Debug(ctx, "failed to send http request", "error", err)

		return nil, fmt.Errorf("failed to send http request: %w", err)
	}

	defer resp.Body.Close() // nolint: errcheck

	finalURL := canonicalURL(resp.Request.URL)
	ctx = ctxd.AddFields(ctx, "http.final_url", finalURL)

	f.log.Debug(ctx, "received http response",
		"http.duration", time.Since(startTime).String(),
		"http.status_code", resp.StatusCode,
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	body := bufio.NewReaderSize(resp.Body, sniffLen)
	contentType := resp.Header.Get("Content-Type")

	if contentType == "" {
		// Peek returns what it has when the body is shorter than sniffLen, a broken body fails when it is read.
		prefix, _ := body.Peek(sniffLen) // nolint: errcheck

		contentType = http.DetectContentType(prefix)
	}

	result := &Response{
		URL:         finalURL,
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		ContentType: contentType,
	}

	if mediaType(contentType) != mediaTypeHTML {
		f.log.Debug(ctx, "skipped reading response body", "http.content_type", contentType)

		return result, nil
	}

	result.Body, err = readBody(body, resp.Header.Get("Content-Type"))
	if err != nil {
		f.log.Debug(ctx, "failed to read http response", "error", err)

		return nil, fmt.Errorf("failed to read http response: %w", err)
	}

	return result, nil
}

// readBody reads the body and converts it to UTF-8 using the declared charset, or the one in the html meta tags.
func readBody(body io.Reader, contentType string) (string, error) {
	r, err := charset.NewReader(body, contentType)
	if err != nil {
		return "", err // nolint: wrapcheck // Wrapped by the caller.
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err // nolint: wrapcheck // Wrapped by the caller.
	}

	return string(b), nil
}

// canonicalURL gives an empty path the root path, the way the links to the root page are resolved.
func canonicalURL(u *url.URL) string {
	if u.Path == "" && u.Opaque == "" && u.Host != "" {
		c := *u
		c.Path = "/"

		return c.String()
	}

	return u.String()
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Broken parameters, keep whatever is before the `;`.
		mt, _, _ = strings.Cut(contentType, ";")

		return strings.ToLower(strings.TrimSpace(mt))
	}

	return mt
}

// NewHTTPFetcher creates a new HTTPFetcher.
//
//	f := NewHTTPFetcher(WithTimeout(5 * time.Second))
//
//	resp, err := f.Fetch(ctx, "http://example.com/")
//	if err != nil {
//		return err
//	}
//
//	fmt.Println(resp.URL, resp.MediaType())
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{},
		log:       ctxd.NoOpLogger{},
		userAgent: DefaultUserAgent,
	}

	for _, opt := range opts {
		opt.applyFetcherOption(f)
	}

	if f.client.Timeout <= 0 {
		f.client.Timeout = DefaultTimeout
	}

	if f.userAgent == "" {
		f.userAgent = DefaultUserAgent
	}

	return f
}

// Option is option to set up HTTPFetcher.
type Option interface {
	applyFetcherOption(f *HTTPFetcher)
}

type fetcherOptionFunc func(f *HTTPFetcher)

func (fn fetcherOptionFunc) applyFetcherOption(f *HTTPFetcher) {
	fn(f)
}

// WithLogger sets logger for HTTPFetcher.
func WithLogger(l ctxd.Logger) Option {
	return fetcherOptionFunc(func(f *HTTPFetcher) {
		f.log = l
	})
}

// WithTimeout sets the total timeout of a request, from dialing to reading the body.
func WithTimeout(d time.Duration) Option {
	return fetcherOptionFunc(func(f *HTTPFetcher) {
		f.client.Timeout = d
	})
}

// WithUserAgent sets the user agent of the requests.
func WithUserAgent(ua string) Option {
	return fetcherOptionFunc(func(f *HTTPFetcher) {
		f.userAgent = ua
	})
}

// WithHTTPClient sets the http client. The timeout of the client is kept unless WithTimeout is also used after this option.
func WithHTTPClient(c *http.Client) Option {
	return fetcherOptionFunc(func(f *HTTPFetcher) {
		clone := *c
		f.client = &clone
	})
}
