// Package sse extracts data payloads from a text/event-stream.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// maxFrameSize bounds a single stream line. Tool output events can carry
// large payloads, so the default bufio limit (64KB) is not enough.
const maxFrameSize = 1024 * 1024

// Reader yields one data payload per stream frame. Frames are delimited by
// blank lines; multi-line data fields are joined with newlines per the
// event-stream format. Comment lines and non-data fields (event, id, retry)
// are skipped.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps an event-stream reader.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	return &Reader{scanner: scanner}
}

// Next returns the joined data payload of the next frame, or io.EOF when the
// stream ends. A frame cut off by EOF before its terminating blank line is
// discarded, matching the event-stream processing model.
func (r *Reader) Next() ([]byte, error) {
	var data []string
	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")

		if line == "" {
			if len(data) == 0 {
				continue
			}
			return []byte(strings.Join(data, "\n")), nil
		}

		// Comment line, used by servers as a keepalive.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := splitField(line)
		if field == "data" {
			data = append(data, value)
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// splitField splits "field: value" at the first colon. A single space after
// the colon is part of the separator, not the value. A line without a colon
// is a field name with an empty value.
func splitField(line string) (string, string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
