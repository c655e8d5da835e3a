package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// SSEWriter streams pipeline progress as Server-Sent Events. Progress callbacks
// may arrive from the pipeline goroutine while the handler writes the final
// event, so writes are serialized.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
}

// NewSSEWriter commits the stream headers and returns a writer for events.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer cannot stream")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one named event with a JSON payload and a sequence id.
func (s *SSEWriter) WriteEvent(name string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, name, body); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event. The HTTP status is already committed, so
// the intended status travels in the payload.
func (s *SSEWriter) WriteError(status int, message string) {
	s.WriteEvent("error", errorPayload{Error: message, Status: status}) //nolint:errcheck
}

type errorPayload struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}
