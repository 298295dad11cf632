// Package footprint reports the resource usage and the progress of a running crawl.
package footprint

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/bool64/ctxd"
)

// Probe returns the key-value pairs to log on every report.
type Probe func() []any

// Track writes the memory usage and the values of the probes to the debug log on every interval until the context is done.
func Track(ctx context.Context, log ctxd.Logger, interval time.Duration, probes ...Probe) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			// See: https://golang.org/pkg/runtime/#MemStats
			var m runtime.MemStats

			runtime.ReadMemStats(&m)

			log.Debug(ctx, "memory usage",
				"alloc_mb", formatB(m.Alloc),
				"total_alloc_mb", formatB(m.TotalAlloc),
				"sys_mb", formatB(m.Sys),
				"num_gc", m.NumGC,
				"num_goroutine", runtime.NumGoroutine(),
			)

			if len(probes) == 0 {
				continue
			}

			keysAndValues := make([]any, 0, 2*len(probes))

			for _, probe := range probes {
				keysAndValues = append(keysAndValues, probe()...)
			}

			log.Debug(ctx, "crawl progress", keysAndValues...)
		}
	}
}

func formatB(b uint64) string {
	return fmt.Sprintf("%dMiB", b/1024/1024) // nolint: gomnd // bytes conversion.
}
