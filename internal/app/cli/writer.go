package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/nhatthm/wscrap/internal/crawler"
	"github.com/nhatthm/wscrap/internal/extractor"
)

var _ crawler.Sink = (*jsonLinesWriter)(nil)

type flusher interface {
	Flush() error
}

// jsonLinesWriter writes every page record as one line of JSON. Writes are serialized so that concurrent workers never interleave partial lines.
type jsonLinesWriter struct {
	mu     sync.Mutex
	out    io.Writer
	buf    bytes.Buffer
	enc    *json.Encoder
	failed bool
}

// Write encodes the record, writes it with a trailing new line and flushes the output if it is buffered.
func (w *jsonLinesWriter) Write(_ context.Context, r crawler.PageRecord) error {
	if r.Links == nil {
		r.Links = []extractor.Link{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Reset()

	if err := w.enc.Encode(r); err != nil { // This should not happen.
		w.failed = true

		return fmt.Errorf("could not encode %q record: %w", r.URL, err)
	}

	if _, err := w.out.Write(w.buf.Bytes()); err != nil {
		w.failed = true

		return fmt.Errorf("could not write %q record: %w", r.URL, err)
	}

	if f, ok := w.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			w.failed = true

			return fmt.Errorf("could not flush %q record: %w", r.URL, err)
		}
	}

	return nil
}

// Failed returns true if at least one record could not be written.
func (w *jsonLinesWriter) Failed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.failed
}

func newJSONLinesWriter(out io.Writer) *jsonLinesWriter {
	w := &jsonLinesWriter{out: out}

	w.enc = json.NewEncoder(&w.buf)
	w.enc.SetEscapeHTML(false)

	return w
}
