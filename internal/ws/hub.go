package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const broadcastBuffer = 256

// Client is one live connection bound to the association it authenticated as
type Client struct {
	Conn     *websocket.Conn
	TenantID uuid.UUID
}

type message struct {
	tenantID uuid.UUID
	payload  []byte
}

// Hub fans stock events out to the connections of a single association.
// Events never cross tenants.
type Hub struct {
	clients    map[uuid.UUID]map[*websocket.Conn]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	mutex      sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*websocket.Conn]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, broadcastBuffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the channels until ctx is cancelled, then closes every connection.
// Join and Leave stop waiting once Run has returned.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mutex.Lock()
			conns, ok := h.clients[client.TenantID]
			if !ok {
				conns = make(map[*websocket.Conn]bool)
				h.clients[client.TenantID] = conns
			}
			conns[client.Conn] = true
			h.mutex.Unlock()
			h.log.Debug("ws client connected", zap.Stringer("tenant_id", client.TenantID))

		case client := <-h.unregister:
			h.mutex.Lock()
			h.remove(client.TenantID, client.Conn)
			h.mutex.Unlock()

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients[msg.tenantID] {
				if err := conn.WriteMessage(websocket.TextMessage, msg.payload); err != nil {
					h.log.Warn("ws write failed, dropping client", zap.Stringer("tenant_id", msg.tenantID), zap.Error(err))
					h.remove(msg.tenantID, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Join adds c to its tenant's connections. It reports false when the hub
// has stopped and the connection should be dropped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Leave removes c; after shutdown the hub has already closed it.
func (h *Hub) Leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues event for the tenant's connections. It never blocks:
// when the queue is full the event is dropped and logged.
func (h *Hub) Publish(tenantID uuid.UUID, event interface{}) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to encode ws event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message{tenantID: tenantID, payload: payload}:
	default:
		h.log.Warn("ws broadcast queue full, dropping event", zap.Stringer("tenant_id", tenantID))
	}
}

// ClientCount reports how many connections a tenant currently has
func (h *Hub) ClientCount(tenantID uuid.UUID) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[tenantID])
}

// remove expects h.mutex to be held
func (h *Hub) remove(tenantID uuid.UUID, conn *websocket.Conn) {
	conns, ok := h.clients[tenantID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		conn.Close()
	}
	if len(conns) == 0 {
		delete(h.clients, tenantID)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for tenantID, conns := range h.clients {
		for conn := range conns {
			conn.Close()
		}
		delete(h.clients, tenantID)
	}
}
