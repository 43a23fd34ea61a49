package ws

import (
	"encoding/json"
	"sync"

	"go-price-pilot/internal/model"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Client is the part of a websocket connection the hub writes to.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// broadcastQueue bounds the notifications waiting for the run loop.
const broadcastQueue = 64

type Hub struct {
	Clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	mutex      sync.Mutex
	log        *zap.Logger
	stopped    chan struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		Clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte, broadcastQueue),
		log:        log.Named("ws"),
		stopped:    make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast requests until done is closed.
// It must be called once.
func (h *Hub) Run(done <-chan struct{}) {
	defer close(h.stopped)
	for {
		select {
		case <-done:
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.log.Debug("New WS client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Debug("Dropping WS client", zap.Error(err))
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Join registers c. It returns false once the hub has stopped.
func (h *Hub) Join(c Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

// Leave unregisters c. After the hub has stopped it only closes c.
func (h *Hub) Leave(c Client) {
	select {
	case h.Unregister <- c:
	case <-h.stopped:
		c.Close()
	}
}

// Notify queues n for every connected client without blocking the caller.
// Notifications keep the order of the Notify calls. They are dropped when the
// queue is full or the hub has stopped.
func (h *Hub) Notify(n model.Notification) {
	msg, err := json.Marshal(n)
	if err != nil {
		h.log.Error("Failed to encode notification", zap.Error(err))
		return
	}
	select {
	case <-h.stopped:
		h.log.Debug("Hub stopped, dropping notification", zap.String("action", n.Action))
		return
	default:
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.log.Warn("Notification queue full, dropping notification", zap.String("action", n.Action))
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}
