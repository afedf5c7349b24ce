package web

import (
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mr1hm/go-maritime-dashboard/internal/live"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
)

// serveWS streams live updates to one browser. The current panels are sent
// first so a reconnecting client catches up.
func (s *Server) serveWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id, updates := s.hub.Subscribe()
	defer s.hub.Unsubscribe(id)
	s.log.Debug("client connected", "id", id, "remote", c.ClientIP())

	done := make(chan struct{})
	go s.readPump(conn, done)

	if err := s.sendPanels(conn); err != nil {
		s.log.Debug("client gone before catch-up", "id", id, "error", err)
		return
	}
	s.writePump(conn, updates, done)
	s.log.Debug("client disconnected", "id", id)
}

func (s *Server) sendPanels(conn *websocket.Conn) error {
	names := make([]string, 0, len(s.panels))
	for name := range s.panels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		u := live.Update{Kind: live.KindPanel, Panel: name, HTML: string(s.panels[name].HTML()), At: s.now()}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(u); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) writePump(conn *websocket.Conn, updates <-chan live.Update, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case u, ok := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(u); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and closes done when the peer goes away.
func (s *Server) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read error", "error", err)
			}
			return
		}
	}
}
