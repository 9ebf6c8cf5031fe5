package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleEvents streams change notifications to the client as server-sent
// events. Each notification is one "change" event with a JSON payload; a
// periodic ping keeps intermediaries from closing the idle connection.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeBadRequest(w, "streaming is not supported")
		return
	}

	session := ensureSession(w, r)
	s.logger.Debug("event stream opened", "session", session)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	changes, cancel := s.notifier.Subscribe()
	defer cancel()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case change, open := <-changes:
			if !open {
				return
			}
			payload, err := json.Marshal(change)
			if err != nil {
				s.logger.Error("failed to encode change event", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
