package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second

	// pingPeriod keeps idle connections alive through proxies.
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

// feedClient is one websocket subscriber. send holds at most one pending
// snapshot; a newer snapshot replaces an unsent one.
type feedClient struct {
	send chan Snapshot
}

// offer queues snap, dropping any snapshot still waiting. Only the hub
// calls offer, under its lock.
func (c *feedClient) offer(snap Snapshot) {
	for {
		select {
		case c.send <- snap:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

// hub fans snapshots out to feed clients.
type hub struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}
	closing chan struct{}
	closed  bool
}

func newHub() *hub {
	return &hub{
		clients: make(map[*feedClient]struct{}),
		closing: make(chan struct{}),
	}
}

// add registers a client and queues initial for it. initial is evaluated
// under the hub lock so that no broadcast can slip in ahead of it.
func (h *hub) add(initial func() Snapshot) *feedClient {
	c := &feedClient{send: make(chan Snapshot, 1)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	c.offer(initial())
	return c
}

func (h *hub) remove(c *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *hub) broadcast(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.offer(snap)
	}
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// close tells every connected client to hang up.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.closing)
	}
}

// handleFeed upgrades to a websocket and streams snapshots until the client
// goes away or the server shuts down. Messages from the client are ignored.
func (s *Server) handleFeed(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	client := s.hub.add(s.currentSnapshot)
	defer s.hub.remove(client)
	s.logger.Debug("feed client connected", "remote", c.Request.RemoteAddr, "clients", s.hub.size())

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				logFeedError(s.logger, err)
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap := <-client.send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(snap); err != nil {
				s.logger.Debug("feed write failed", "error", err)
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.hub.closing:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			ws.Close()
			<-gone
			return
		case <-gone:
			s.logger.Debug("feed client disconnected", "remote", c.Request.RemoteAddr)
			return
		}
	}
}

func logFeedError(logger *slog.Logger, err error) {
	if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Warn("feed connection closed unexpectedly", "error", err)
	}
}
