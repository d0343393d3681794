package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
)

// SSE event names on /generate-email/stream.
const (
	eventStep   = "step"
	eventResult = "result"
	eventError  = "error"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// eventStream writes Server-Sent Events. After the first failed write every
// later send returns that error without writing.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
	err     error
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &eventStream{w: w, flusher: flusher}, nil
}

// send writes one event with data encoded as JSON.
func (s *eventStream) send(event string, data any) error {
	if s.err != nil {
		return s.err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("[server] encoding %s event: %v", event, err)
		return err
	}

	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		log.Printf("[server] SSE write failed, dropping remaining events: %v", err)
		s.err = err
		return err
	}
	s.flusher.Flush()
	return nil
}
