package httpserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleFavoriteEvents streams favorites changes of the caller's namespace
// over a websocket, one JSON event per message.
func (s *Server) handleFavoriteEvents(w http.ResponseWriter, r *http.Request) {
	ns, ok := s.requireNamespace(w, r, true)
	if !ok {
		return
	}
	hub := s.favorites.Hub()
	if hub == nil {
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Change notifications are disabled")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := hub.Subscribe(ns)
	defer cancel()

	// The read side only services control frames; it ends when the peer
	// closes or stops answering pings.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
