package crawler

var _ error = (*Error)(nil)

// Error is a crawler error.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}

const (
	// ErrOperationCanceled indicates that the crawl was canceled before the frontier was drained.
	ErrOperationCanceled = Error("operation canceled")
	// ErrFrontierClosed indicates that the frontier does not accept or give out work items anymore.
	ErrFrontierClosed = Error("frontier is closed")

	// ErrAlreadyVisited indicates that the url has already been claimed by a worker. This is a dedup skip, not a failure.
	ErrAlreadyVisited = Error("already visited")
	// ErrFetch indicates that the page could not be fetched: network failure, timeout or non-2xx status code.
	ErrFetch = Error("could not fetch page")
	// ErrUnsupportedContentType indicates that the page is not an HTML document.
	ErrUnsupportedContentType = Error("not html content")
	// ErrParse indicates that the title and the links could not be extracted from the page.
	ErrParse = Error("could not extract page")
	// ErrEmit indicates that the page record could not be written to the sink.
	ErrEmit = Error("could not emit page record")
)
