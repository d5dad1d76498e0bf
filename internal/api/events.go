package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colonyops/classbell/internal/core/eventbus"
)

const maxEventBody = 1 << 20

// publishEvent injects a domain event, e.g. POST /api/v1/events/payment.confirmed.
// The notification is created asynchronously by the bus subscribers.
func (s *Server) publishEvent(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		writeError(w, http.StatusServiceUnavailable, "event bus disabled")
		return
	}

	event := eventbus.Event(chi.URLParam(r, "event"))
	if _, ok := eventbus.Events()[event]; !ok {
		writeError(w, http.StatusNotFound, "unknown event "+string(event))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	var recipient struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(body, &recipient); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if recipient.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := s.bus.PublishJSON(event, body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"event":  string(event),
	})
}
