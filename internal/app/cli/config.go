package cli

import (
	"io"
	"time"
)

// VerbosityLevel is the verbosity level of the application. It only changes what is logged, never how the crawl behaves.
type VerbosityLevel uint

const (
	// VerbosityLevelWarning logs only the pages that could not be crawled.
	VerbosityLevelWarning VerbosityLevel = iota
	// VerbosityLevelInfo also logs every visit and dedup skip.
	VerbosityLevelInfo
	// VerbosityLevelDebug logs everything.
	VerbosityLevelDebug
)

// Config is the configuration of the application. It is fixed for the whole run.
type Config struct {
	OutWriter io.Writer // The stream that will receive the page records, one JSON object per line.
	ErrWriter io.Writer // The stream that will receive all the log messages and errors.

	Depth          int            // The number of link levels followed from the seeds.
	Timeout        time.Duration  // The total timeout of a request. Default to fetcher.DefaultTimeout when zero.
	UserAgent      string         // The user agent of the requests. Default to fetcher.DefaultUserAgent when empty.
	NumWorkers     int            // The number of workers fetching pages.
	NumParsers     int            // The number of goroutines parsing pages. Default to the number of CPUs when zero.
	VerbosityLevel VerbosityLevel // The verbosity level of the tool.
}
