package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/colonyops/classbell/internal/classbell"
	"github.com/colonyops/classbell/internal/core/notify"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	records := s.store.List(r.Context(), userID)

	if unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread")); unreadOnly {
		resp := newListResponse(records)
		resp.Notifications = filterUnread(records)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	writeJSON(w, http.StatusOK, newListResponse(records))
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	writeJSON(w, http.StatusOK, map[string]int{
		"unread": s.store.UnreadCount(r.Context(), userID),
	})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	err := s.store.MarkRead(r.Context(), userID, chi.URLParam(r, "id"))
	s.respondMutation(w, r, userID, err)
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	err := s.store.MarkAllRead(r.Context(), userID)
	s.respondMutation(w, r, userID, err)
}

func (s *Server) deleteNotification(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	err := s.store.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	s.respondMutation(w, r, userID, err)
}

func (s *Server) clearNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	err := s.store.Clear(r.Context(), userID)
	s.respondMutation(w, r, userID, err)
}

// respondMutation answers with the user's list after a change. A failed save
// is a soft warning: the change is live for this process.
func (s *Server) respondMutation(w http.ResponseWriter, r *http.Request, userID string, err error) {
	var perr *notify.PersistenceError
	switch {
	case err == nil:
	case errors.As(err, &perr):
		resp := newListResponse(s.store.List(r.Context(), userID))
		resp.Warning = "change applied but not saved: " + perr.Err.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	case errors.Is(err, classbell.ErrMissingUser):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		s.log.Error().Err(err).Str("user_id", userID).Msg("notification mutation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, newListResponse(s.store.List(r.Context(), userID)))
}

func filterUnread(records []notify.Record) []notify.Record {
	out := make([]notify.Record, 0, len(records))
	for _, rec := range records {
		if !rec.Read {
			out = append(out, rec)
		}
	}
	return out
}
