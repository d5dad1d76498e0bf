// Package api exposes the notification engine to UI collaborators over HTTP
// and streams live list snapshots over WebSocket.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/colonyops/classbell/internal/classbell"
	"github.com/colonyops/classbell/internal/core/eventbus"
)

const shutdownTimeout = 5 * time.Second

// Deps are the collaborators the server needs.
type Deps struct {
	Store          *classbell.Store
	Bus            *eventbus.EventBus
	AllowedOrigins []string
	Version        string
	Log            zerolog.Logger
}

// Server serves the notification API.
type Server struct {
	store   *classbell.Store
	bus     *eventbus.EventBus
	origins []string
	version string
	log     zerolog.Logger
}

// New creates a server. Bus may be nil, in which case event injection is
// disabled.
func New(d Deps) *Server {
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		store:   d.Store,
		bus:     d.Bus,
		origins: origins,
		version: d.Version,
		log:     d.Log,
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users/{userID}/notifications", func(r chi.Router) {
			r.Get("/", s.listNotifications)
			r.Delete("/", s.clearNotifications)
			r.Get("/unread-count", s.unreadCount)
			r.Post("/read-all", s.markAllRead)
			r.Get("/stream", s.stream)
			r.Post("/{id}/read", s.markRead)
			r.Delete("/{id}", s.deleteNotification)
		})

		r.Post("/events/{event}", s.publishEvent)
	})

	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}
