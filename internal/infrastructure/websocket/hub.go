package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"auction-service/pkg/logger"

	"github.com/gorilla/websocket"
)

// Conn wraps a gorilla connection with a write lock; gorilla allows only one
// concurrent writer.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

// Hub tracks live-feed connections per auction and fans bid events out to
// them. Send failures drop the connection; the client reconnects.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*Conn]struct{} // auctionID -> connections
	log   logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		conns: make(map[string]map[*Conn]struct{}),
		log:   log,
	}
}

func (h *Hub) Register(auctionID string, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[auctionID] == nil {
		h.conns[auctionID] = make(map[*Conn]struct{})
	}
	h.conns[auctionID][conn] = struct{}{}
	h.log.Debug("live feed connection registered", "auction_id", auctionID)
}

func (h *Hub) Unregister(auctionID string, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if auctionConns, ok := h.conns[auctionID]; ok {
		delete(auctionConns, conn)
		if len(auctionConns) == 0 {
			delete(h.conns, auctionID)
		}
	}
	h.log.Debug("live feed connection unregistered", "auction_id", auctionID)
}

func (h *Hub) BroadcastToAuction(_ context.Context, auctionID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.conns[auctionID]))
	for conn := range h.conns[auctionID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(data); err != nil {
			h.log.Warn("dropping live feed connection after failed send",
				"auction_id", auctionID, "error", err)
			conn.Close()
			h.Unregister(auctionID, conn)
		}
	}

	return nil
}

// CloseAuction disconnects every watcher of an auction, typically after it
// closes.
func (h *Hub) CloseAuction(auctionID string) {
	h.mu.Lock()
	auctionConns := h.conns[auctionID]
	delete(h.conns, auctionID)
	h.mu.Unlock()

	for conn := range auctionConns {
		conn.Close()
	}
}
