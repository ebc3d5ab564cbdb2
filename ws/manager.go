package ws

import (
	"context"
	"sync"

	"boilerplate_backend/internal/logger"
	"boilerplate_backend/internal/metrics"
)

// Hub владеет картой клиентов. Регистрация и удаление идут через каналы в Run
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	done       chan struct{}
	mu         sync.RWMutex
	closed     bool

	metrics *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 16),
		done:       make(chan struct{}),
		metrics:    m,
	}
}

// Run обслуживает каналы хаба до отмены ctx
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.closed {
				h.mu.Unlock()
				client.closeSend()
				continue
			}
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()

			if h.metrics != nil {
				h.metrics.WSConnected()
			}
			logger.Debug("WebSocket client registered", "client_id", client.ID, "total", total)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ctx.Done():
			h.closeAll(nil)
			return
		}
	}
}

// Broadcast ставит сообщение в очередь рассылки всем клиентам
func (h *Hub) Broadcast(message Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// Shutdown рассылает {type:"shutdown"} и закрывает все соединения
func (h *Hub) Shutdown() {
	h.closeAll(&Message{
		Type: TypeShutdown,
		Data: map[string]string{"message": "Server shutting down"},
	})
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsClientConnected проверяет, подключен ли клиент
func (h *Hub) IsClientConnected(clientID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.clients[clientID]
	return exists
}

func (h *Hub) addClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) removeClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client.ID]
	if ok {
		delete(h.clients, client.ID)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	client.closeSend()
	if h.metrics != nil {
		h.metrics.WSDisconnected()
	}
	logger.Debug("WebSocket client unregistered", "client_id", client.ID, "total", total)
}

func (h *Hub) broadcastMessage(message Message) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if !client.enqueue(message) {
			logger.Warn("WebSocket client send buffer full, disconnecting", "client_id", client.ID)
			h.remove(client)
		}
	}
}

func (h *Hub) closeAll(last *Message) {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.closed = true
	h.mu.Unlock()

	for _, client := range clients {
		if last != nil {
			client.enqueue(*last)
		}
		client.closeSend()
		if h.metrics != nil {
			h.metrics.WSDisconnected()
		}
	}
	if len(clients) > 0 {
		logger.Info("WebSocket clients closed", "count", len(clients))
	}
}
