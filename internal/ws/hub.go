package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Client is the part of *websocket.Conn the hub needs
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscription attaches a connection to the user it was authenticated as
type Subscription struct {
	Client  Client
	OwnerID string
}

// Message is delivered to OwnerID's connections, or to every connection when OwnerID is empty
type Message struct {
	OwnerID string
	Payload []byte
}

// BroadcastBuffer is how many messages may wait for Run before Publish starts dropping them
const BroadcastBuffer = 256

type Hub struct {
	Clients    map[Client]string
	Register   chan Subscription
	Unregister chan Client
	Broadcast  chan Message
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[Client]string),
		Register:   make(chan Subscription),
		Unregister: make(chan Client),
		Broadcast:  make(chan Message, BroadcastBuffer),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.Register:
			h.mutex.Lock()
			h.Clients[sub.Client] = sub.OwnerID
			h.mutex.Unlock()
			log.Println("New WS Client Connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn, owner := range h.Clients {
				if message.OwnerID != "" && message.OwnerID != owner {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, message.Payload); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Publish encodes payload and queues it without blocking the caller.
// When the queue is full (Run stopped or too slow) the message is dropped.
func (h *Hub) Publish(ownerID string, payload interface{}) {
	msg, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws: cannot encode payload: %v", err)
		return
	}
	select {
	case h.Broadcast <- Message{OwnerID: ownerID, Payload: msg}:
	default:
		log.Printf("ws: broadcast queue full, dropping message for owner %q", ownerID)
	}
}

// ClientCount returns the number of registered connections
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}
