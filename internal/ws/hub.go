package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"atelier_back_end/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// Message : événement poussé au tableau de bord admin
type Message struct {
	Type      string       `json:"type"`
	Order     models.Order `json:"order"`
	Timestamp string       `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Hub diffuse les événements de commande aux tableaux de bord connectés
type Hub struct {
	clients    map[*client]bool
	broadcast  chan Message
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			log.Printf("🔌 Tableau de bord connecté (%d clients)", h.clientCount())

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Client trop lent, on le déconnecte
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// OrderCreated diffuse une nouvelle commande (implémente orders.Notifier)
func (h *Hub) OrderCreated(order models.Order) {
	h.publish("order_created", order)
}

// OrderStatusChanged diffuse un changement de statut
func (h *Hub) OrderStatusChanged(order models.Order) {
	h.publish("order_status_changed", order)
}

func (h *Hub) publish(eventType string, order models.Order) {
	select {
	case h.broadcast <- Message{
		Type:      eventType,
		Order:     order,
		Timestamp: time.Now().Format(time.RFC3339),
	}:
	default:
		log.Println("⚠️ File de diffusion pleine, événement ignoré:", eventType)
	}
}

// Serve upgrade la connexion HTTP et attache le client au hub
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan Message, 16)}
	h.register <- c

	go c.writeLoop()
	go c.readLoop(h)
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *client) readLoop(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
