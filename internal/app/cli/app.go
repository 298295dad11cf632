// Package cli runs the crawler as a command line application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bool64/ctxd"

	"github.com/nhatthm/wscrap/internal/crawler"
	"github.com/nhatthm/wscrap/internal/extractor"
	"github.com/nhatthm/wscrap/internal/fetcher"
	"github.com/nhatthm/wscrap/internal/logger"
)

const (
	// CodeOK indicates that the program exited with success.
	CodeOK = ExitCode(iota)
	// CodeErrOperationCanceled indicates that the program has been terminated and operation is canceled.
	CodeErrOperationCanceled
	// CodeErrNoInputSource indicates that the program has no input source.
	CodeErrNoInputSource
	// CodeErrOpenInputSource indicates that the program could not open input file.
	CodeErrOpenInputSource
	// CodeErrUnsupportedInputSource indicates that the program could not use the input source.
	CodeErrUnsupportedInputSource
	// CodeErrBadArgs indicates that the provided arguments are invalid.
	CodeErrBadArgs
	// CodeErrOutput indicates that the program could not write to output.
	CodeErrOutput
)

// ExitCode is the exit code of the program.
type ExitCode int

// Run crawls the seed urls from the sources and writes one JSON record per crawled HTML page to the output.
//
// It will take only the first valid source as an input. The source types are:
// - []string: A list of URLs.
// - string: A file path that contains a list of URLs, one on each line.
// - io.ReadCloser: A reader that contains a list of URLs, one on each line.
// - io.Reader: A reader that contains a list of URLs, one on each line.
//
// The URLs can be with or without scheme. If the scheme is missing, default to http.
func Run(cfg Config, inputSources ...any) ExitCode {
	if cfg.ErrWriter == nil {
		cfg.ErrWriter = os.Stderr
	}

	// Configure input source.
	inputSource, code, err := initInputSource(inputSources...)
	if err != nil {
		_, _ = fmt.Fprintln(cfg.ErrWriter, err.Error())

		return code
	}

	defer inputSource.Close() // nolint: errcheck

	if err := validateConfig(cfg); err != nil {
		_, _ = fmt.Fprintln(cfg.ErrWriter, err.Error())

		return CodeErrBadArgs
	}

	log := initLogger(cfg.VerbosityLevel, cfg.ErrWriter)

	// The parser pool is closed only after all the crawler workers have stopped.
	pool := extractor.NewPool(cfg.NumParsers, extractor.NewHTMLExtractor())
	defer pool.Close()

	c := initCrawler(cfg, pool, log)
	seeds := readSeeds(context.Background(), inputSource, log)

	out := cfg.OutWriter
	if out == nil {
		out = os.Stdout
	}

	sink := newJSONLinesWriter(out)

	code = doCrawl(c, seeds, sink, log)
	if code == CodeOK && sink.Failed() {
		code = CodeErrOutput
	}

	return code
}

// initLogger returns a new logger that writes to the stderr writer.
//
// Then the verbosity level is
// - VerbosityLevelWarning, the log level will be set to logger.WarnLevel.
// - VerbosityLevelInfo, the log level will be set to logger.InfoLevel.
// - VerbosityLevelDebug, the log level will be set to logger.DebugLevel.
func initLogger(level VerbosityLevel, errWriter io.Writer) ctxd.Logger {
	return logger.NewLogger(logger.Config{
		Output: errWriter,
		Level:  logger.LevelFromVerbosity(int(level)),
	})
}

// initInputSource returns the first valid input source.
//
// It accepts a list of input sources. The source types are:
// - []string: A list of URLs. If the list is empty, it is ignored.
// - string: A file path that contains a list of URLs, one on each line. If the path is empty, it is ignored.
// - io.ReadCloser: A reader that contains a list of URLs, one on each line.
// - io.Reader: A reader that contains a list of URLs, one on each line.
//
// The function returns an input source as an io.ReadCloser so that it can be streamed and closed by the caller.
//
// nolint: cyclop,goerr113 // Error will be printed out.
func initInputSource(sources ...any) (io.ReadCloser, ExitCode, error) {
	for _, source := range sources {
		switch s := source.(type) {
		case nil:
			continue

		case []string:
			if len(s) == 0 {
				continue
			}

			return io.NopCloser(strings.NewReader(strings.Join(s, "\n"))), CodeOK, nil

		case string:
			if len(s) == 0 {
				continue
			}

			f, err := os.Open(filepath.Clean(s))
			if err != nil {
				return nil, CodeErrOpenInputSource, fmt.Errorf("could not open input file: %w", err)
			}

			return f, CodeOK, nil

		case io.ReadCloser:
			return s, CodeOK, nil

		case io.Reader:
			return io.NopCloser(s), CodeOK, nil

		default:
			return nil, CodeErrUnsupportedInputSource, fmt.Errorf("unsupported input source: %T", s)
		}
	}

	return nil, CodeErrNoInputSource, errors.New("no input source")
}

// validateConfig checks the configuration before anything is started.
//
// nolint: goerr113 // Error will be printed out.
func validateConfig(cfg Config) error {
	switch {
	case cfg.NumWorkers < 1:
		return errors.New(`number of workers must be greater than 0`)

	case cfg.NumParsers < 0:
		return errors.New(`number of parsers must not be negative`)

	case cfg.Depth < 0:
		return errors.New(`depth must not be negative`)

	case cfg.Timeout < 0:
		return errors.New(`timeout must not be negative`)
	}

	return nil
}

// initCrawler initiates a new crawler.Crawler that fetches pages with the configured user agent and timeout and extracts them in the pool.
func initCrawler(cfg Config, pool *extractor.Pool, log ctxd.Logger) *crawler.Crawler {
	f := fetcher.NewHTTPFetcher(
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithLogger(log),
	)

	return crawler.NewCrawler(
		crawler.WithFetcher(f),
		crawler.WithExtractor(pool),
		crawler.WithDepth(cfg.Depth),
		crawler.WithNumWorkers(cfg.NumWorkers),
		crawler.WithLogger(log),
	)
}

// doCrawl crawls the seeds and writes the records to the sink.
//
// In case of SIGINT or SIGTERM, the crawler will be gracefully stopped and the function will return CodeErrOperationCanceled.
func doCrawl(c *crawler.Crawler, seeds []string, sink crawler.Sink, log ctxd.Logger) ExitCode {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)

	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() { // Watch for termination to cancel the context in order to signal all the workers to stop.
		select {
		case sig := <-sigs:
			log.Warn(ctx, "received signal, stopping", "signal", sig.String())

			cancel()

		case <-ctx.Done():
		}
	}()

	// Crawl only fails when it is canceled, the failures of the pages are logged by the workers.
	if err := c.Crawl(ctx, seeds, sink); err != nil {
		return CodeErrOperationCanceled
	}

	return CodeOK
}
