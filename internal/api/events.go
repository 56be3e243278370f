package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleEvents streams change notifications as SSE `update` events.
func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondDetail(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// The connection outlives the server's write timeout by design.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	id, ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(id)

	s.logger.WithField("subscriber", id).Debug("event subscriber connected")

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}

			encoded, err := json.Marshal(msg)
			if err != nil {
				s.logger.WithError(err).Error("failed to encode event frame")
				continue
			}

			if _, err := fmt.Fprintf(w, "event: update\ndata: %s\n\n", encoded); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
