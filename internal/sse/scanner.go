// Package sse implements a Server-Sent-Events frame scanner. It reassembles
// logical frames from a byte stream, tolerating frames that arrive split
// across reads.
package sse

import (
	"bytes"
	"io"
	"strconv"
	"strings"
)

// Frame is one wire-level event block, terminated by a blank line. Data is
// the joined payload of every data line in the block.
type Frame struct {
	Event string
	Data  string
	ID    string
	Retry int
}

const readChunkSize = 4096

// Scanner yields complete frames from an io.Reader. The trailing partial
// frame is held in an internal buffer between reads; consumed bytes are
// discarded by offset, so frames without ids are trimmed exactly like any
// other frame.
type Scanner struct {
	reader io.Reader
	buf    []byte
	eof    bool
}

// NewScanner wraps a raw event-stream body.
func NewScanner(reader io.Reader) *Scanner {
	return &Scanner{reader: reader}
}

// Next returns the next complete frame. It returns io.EOF once the stream is
// exhausted; any remaining buffered bytes form one final frame first. Frames
// containing no fields (comment-only blocks) are skipped.
func (s *Scanner) Next() (*Frame, error) {
	for {
		if raw, ok := s.takeFrame(); ok {
			frame := parseFrame(raw)
			if frame != nil {
				return frame, nil
			}

			continue
		}

		if s.eof {
			if len(s.buf) > 0 {
				raw := s.buf
				s.buf = nil

				frame := parseFrame(raw)
				if frame != nil {
					return frame, nil
				}
			}

			return nil, io.EOF
		}

		chunk := make([]byte, readChunkSize)

		n, err := s.reader.Read(chunk)
		if n > 0 {
			s.buf = append(s.buf, chunk[:n]...)
		}

		if err != nil {
			if err == io.EOF {
				s.eof = true

				continue
			}

			return nil, err
		}
	}
}

// takeFrame cuts the earliest complete frame off the front of the buffer.
func (s *Scanner) takeFrame() ([]byte, bool) {
	end, sep := frameBoundary(s.buf)
	if end < 0 {
		return nil, false
	}

	raw := s.buf[:end]
	s.buf = s.buf[end+sep:]

	return raw, true
}

// frameBoundary locates the first blank-line separator, returning its offset
// and width. Both LF and CRLF framing are accepted.
func frameBoundary(buf []byte) (int, int) {
	lf := bytes.Index(buf, []byte("\n\n"))
	crlf := bytes.Index(buf, []byte("\r\n\r\n"))

	switch {
	case lf < 0 && crlf < 0:
		return -1, 0
	case crlf < 0 || (lf >= 0 && lf < crlf):
		return lf, 2
	default:
		return crlf, 4
	}
}

// parseFrame interprets the field lines of one block. It returns nil when the
// block carries no fields (e.g. only comments).
func parseFrame(raw []byte) *Frame {
	frame := &Frame{}
	seen := false

	var data []string

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		field, value := splitField(line)

		switch field {
		case "event":
			frame.Event = value
			seen = true
		case "data":
			data = append(data, value)
			seen = true
		case "id":
			frame.ID = value
			seen = true
		case "retry":
			if retry, err := strconv.Atoi(value); err == nil {
				frame.Retry = retry
				seen = true
			}
		}
	}

	if !seen {
		return nil
	}

	frame.Data = strings.Join(data, "\n")

	return frame
}

// splitField separates "field: value", trimming the single optional space
// after the colon per the SSE format.
func splitField(line string) (string, string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}

	return field, strings.TrimPrefix(value, " ")
}
