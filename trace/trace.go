// Package trace records and replays input frame streams as JSON lines, one
// frame per line. Traces are the main way to reproduce input feel issues:
// capture a session once, then replay it through differently tuned pipelines.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Writer appends frames to a trace stream.
type Writer struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewWriter wraps w; call Flush when done.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{w: bw, enc: json.NewEncoder(bw)}
}

// Write appends one record. v is typically a feed.Frame.
func (t *Writer) Write(v any) error {
	return t.enc.Encode(v)
}

// Flush writes any buffered records through to the underlying writer.
func (t *Writer) Flush() error {
	return t.w.Flush()
}

// Reader iterates over the frames of a trace stream.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Read decodes the next record into v, returning io.EOF at the end of the
// trace. Blank lines are skipped so hand-edited traces stay readable.
func (t *Reader) Read(v any) error {
	for t.scanner.Scan() {
		t.line++
		line := t.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := json.Unmarshal(line, v); err != nil {
			return fmt.Errorf("trace line %d: %w", t.line, err)
		}
		return nil
	}
	if err := t.scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}
