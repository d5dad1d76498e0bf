package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/colonyops/classbell/internal/core/notify"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)
		},
	}
}

// stream sends the user's list on connect and again after every change until
// the client goes away.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	updates, unsubscribe := s.store.SubscribeLatest(userID)
	defer unsubscribe()

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	log := s.log.With().Str("user_id", userID).Logger()
	log.Debug().Msg("stream opened")
	defer log.Debug().Msg("stream closed")

	// A snapshot queued before List is no newer than List itself.
	select {
	case <-updates:
	default:
	}
	if err := writeSnapshot(conn, s.store.List(r.Context(), userID)); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case records := <-updates:
			if err := writeSnapshot(conn, records); err != nil {
				log.Debug().Err(err).Msg("stream write failed")
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, records []notify.Record) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(newListResponse(records))
}

// readUntilClosed drains client frames so pongs and close frames are
// processed, and closes done when the connection ends.
func readUntilClosed(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
