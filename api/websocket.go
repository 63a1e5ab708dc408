package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/clearvault/vaultd/domain"
)

// upgrader permits any origin, matching a backend service with no browser
// same-origin policy to enforce at this layer (clients are trusted
// internal callers per spec.md §1).
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// handleWebSocket upgrades GET /ws/{user}, sends a welcome HealthUpdate,
// then relays every event the Notification Registry delivers to this
// user's subscriber channel as a text frame until the connection closes.
// Text frames sent by the client are echoed back as a Ping
// acknowledgement. Ping/Pong at the framing layer are handled by
// gorilla/websocket's SetPongHandler, transparent to this relay loop.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade failed for user=%s: %v", user, err)
		return
	}
	defer conn.Close()

	sub := s.registry.Register(user)
	defer s.registry.Unregister(sub)

	welcome, _ := json.Marshal(domain.Event{
		Type: domain.EventHealthUpdate,
		Payload: domain.HealthUpdatePayload{
			Database: s.store.Ping(r.Context()) == nil,
			ChainRPC: s.chainClient.GetHealth(r.Context()),
			Version:  Version,
		},
	})
	if err := conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
		log.Warnf("websocket welcome write failed for user=%s: %v", user, err)
		return
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	readErrCh := make(chan error, 1)
	inCh := make(chan []byte)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				readErrCh <- err
				return
			}
			inCh <- msg
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case err := <-readErrCh:
			log.Debugf("websocket closed for user=%s: %v", user, err)
			return

		case msg := <-inCh:
			ack, _ := json.Marshal(domain.Event{
				Type:    domain.EventPing,
				Payload: domain.PingPayload{Echo: string(msg)},
			})
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, ack); err != nil {
				log.Warnf("websocket ack write failed for user=%s: %v", user, err)
				return
			}

		case payload := <-sub.Messages():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Warnf("websocket push failed for user=%s: %v", user, err)
				return
			}

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
