// If you are AI: This file implements /ws/topics, a periodic live feed of
// the same data /api/topics returns. It is grounded on the teacher's
// internal/svc/wsflv/handler.go: an Upgrader with CheckOrigin wide open (no
// auth model exists yet on either side), an upgrade-then-loop-until-error
// handler. Unlike the teacher's per-connection media fanout, there is no
// subscriber registry to attach to — the loop just re-polls the topic list
// on a ticker and writes a fresh JSON snapshot each time.
package monitor

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const wsPushInterval = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Service) handleTopicsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(wsPushInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteJSON(s.snapshot()); err != nil {
			return
		}
	}
}
