package cli

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/bool64/ctxd"

	"github.com/nhatthm/wscrap/internal/crawler"
)

// readSeeds reads the seed urls from the source, one on each line.
//
// Blank lines are ignored and urls without scheme are prefixed with http://. In case of read error, the error is logged and the urls that have been
// read so far are returned.
func readSeeds(ctx context.Context, source io.Reader, log ctxd.Logger) []string {
	seeds := make([]string, 0)
	s := bufio.NewScanner(source)

	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}

		seed := crawler.NormalizeURL(line)

		log.Debug(ctx, "read seed", "seed", seed)

		seeds = append(seeds, seed)
	}

	if err := s.Err(); err != nil {
		log.Error(ctx, "could not read input seeds", "error", err)
	}

	return seeds
}
