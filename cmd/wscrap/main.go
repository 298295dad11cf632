package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhatthm/wscrap/internal/app/cli"
	"github.com/nhatthm/wscrap/internal/crawler"
	"github.com/nhatthm/wscrap/internal/fetcher"
)

const banner = `
██╗    ██╗███████╗ ██████╗██████╗  █████╗ ██████╗
██║    ██║██╔════╝██╔════╝██╔══██╗██╔══██╗██╔══██╗
██║ █╗ ██║███████╗██║     ██████╔╝███████║██████╔╝
██║███╗██║╚════██║██║     ██╔══██╗██╔══██║██╔═══╝
╚███╔███╔╝███████║╚██████╗██║  ██║██║  ██║██║
 ╚══╝╚══╝ ╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝
`

// version is set at build time via ldflags.
var version = ""

func getVersion() string {
	if version != "" {
		return version
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok && buildInfo.Main.Version != "" {
		return buildInfo.Main.Version
	}

	return "(devel)"
}

type options struct {
	depth      int
	input      string
	output     string
	timeout    float64
	userAgent  string
	verbosity  int
	numWorkers int
	numParsers int
}

func newRootCmd(code *cli.ExitCode) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "wscrap [url...]",
		Short: "Crawl websites and print the title and the links of every html page",
		Long: `wscrap crawls the seed urls and follows the links that stay on the same domain, up to the
given depth. Every crawled html page is printed as one JSON object per line.

The seed urls are taken from the arguments, or from the input file, or from stdin, one on
each line. The urls can be with or without scheme. If the scheme is missing, default to http.

Examples:
  # Crawl the urls in a file with 20 workers
  wscrap -w 20 -i urls.txt -o pages.jsonl

  # Crawl the urls from stdin
  echo "example.com" | wscrap -d 1 -vv`,
		Version:       getVersion(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			*code = run(cmd, opts, args)

			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.depth, "depth", "d", crawler.DefaultDepth, "crawl depth")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "input file (default stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().Float64VarP(&opts.timeout, "timeout", "t", fetcher.DefaultTimeout.Seconds(), "client timeout in seconds")
	cmd.Flags().StringVarP(&opts.userAgent, "user-agent", "u", fetcher.DefaultUserAgent, "client user agent")
	cmd.Flags().CountVarP(&opts.verbosity, "verbosity", "v", "increase output verbosity: 0 - warning, 1 - info, 2 - debug")
	cmd.Flags().IntVarP(&opts.numWorkers, "workers", "w", crawler.DefaultNumWorkers, "number of workers")
	cmd.Flags().IntVarP(&opts.numParsers, "parsers", "p", runtime.NumCPU(), "number of html parsers")

	return cmd
}

func run(cmd *cobra.Command, opts options, args []string) cli.ExitCode {
	errWriter := cmd.ErrOrStderr()

	_, _ = fmt.Fprint(errWriter, banner+"\n")

	var out io.Writer = cmd.OutOrStdout()

	if opts.output != "" {
		f, err := os.Create(filepath.Clean(opts.output))
		if err != nil {
			_, _ = fmt.Fprintf(errWriter, "could not open output file: %s\n", err.Error())

			return cli.CodeErrOutput
		}

		defer f.Close() // nolint: errcheck

		out = bufio.NewWriter(f)
	}

	cfg := cli.Config{
		OutWriter:      out,
		ErrWriter:      errWriter,
		Depth:          opts.depth,
		Timeout:        time.Duration(opts.timeout * float64(time.Second)),
		UserAgent:      opts.userAgent,
		NumWorkers:     opts.numWorkers,
		NumParsers:     opts.numParsers,
		VerbosityLevel: verbosityLevel(opts.verbosity),
	}

	return cli.Run(cfg, args, opts.input, cmd.InOrStdin())
}

func verbosityLevel(count int) cli.VerbosityLevel {
	switch {
	case count >= 2:
		return cli.VerbosityLevelDebug

	case count == 1:
		return cli.VerbosityLevelInfo
	}

	return cli.VerbosityLevelWarning
}

func main() {
	code := cli.CodeOK

	if err := newRootCmd(&code).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(int(cli.CodeErrBadArgs))
	}

	os.Exit(int(code))
}
