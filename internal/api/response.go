package api

import (
	"encoding/json"
	"net/http"

	"github.com/colonyops/classbell/internal/core/notify"
)

// ListResponse is the body returned by list reads and mutations.
type ListResponse struct {
	Unread        int             `json:"unread"`
	Notifications []notify.Record `json:"notifications"`
	// Warning is set when the change applied but could not be saved.
	Warning string `json:"warning,omitempty"`
}

func newListResponse(records []notify.Record) ListResponse {
	if records == nil {
		records = []notify.Record{}
	}
	return ListResponse{Unread: notify.UnreadCount(records), Notifications: records}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
