// Package sse frames and parses Server-Sent Events.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DoneMarker terminates a stream.
const DoneMarker = "[DONE]"

var ErrStreamingUnsupported = errors.New("response writer does not support flushing")

// Writer emits one "data:" frame per event and flushes after each, so
// events reach the client in the order they were written.
type Writer struct {
	w http.ResponseWriter
	f http.Flusher
}

// NewWriter sends the event-stream headers and a 200 status.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	f.Flush()
	return &Writer{w: w, f: f}, nil
}

// WriteJSON encodes v as the data of one event.
func (s *Writer) WriteJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return s.writeData(b)
}

// Done writes the end-of-stream marker.
func (s *Writer) Done() error {
	return s.writeData([]byte(DoneMarker))
}

func (s *Writer) writeData(b []byte) error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", b); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}
