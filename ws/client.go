package ws

import (
	"encoding/json"
	"sync"
	"time"

	"boilerplate_backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Типы сообщений
const (
	TypeConnection = "connection"
	TypePing       = "ping"
	TypePong       = "pong"
	TypeError      = "error"
	TypeShutdown   = "shutdown"
)

// Message - конверт {type, data} в обе стороны
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan Message

	hub       *Hub
	closeOnce sync.Once
	mu        sync.Mutex
	sendOpen  bool
}

func newClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:       id,
		Conn:     conn,
		Send:     make(chan Message, sendBufferSize),
		hub:      hub,
		sendOpen: true,
	}
}

// enqueue не блокирует: false, если буфер полон или канал уже закрыт
func (c *Client) enqueue(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sendOpen {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.sendOpen = false
		close(c.Send)
		c.mu.Unlock()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Warn("WebSocket read error", "client_id", c.ID)
			}
			return
		}
		c.handleMessage(payload)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				logger.WithError(err).Warn("WebSocket write error", "client_id", c.ID)
				return
			}
			c.record(msg.Type, "out")

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage - на ping отвечаем pong, всё остальное считается ошибкой клиента
func (c *Client) handleMessage(payload []byte) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.record("invalid", "in")
		c.enqueue(errorMessage("Invalid message format"))
		return
	}
	c.record(msg.Type, "in")

	switch msg.Type {
	case TypePing:
		c.enqueue(Message{
			Type: TypePong,
			Data: map[string]int64{"timestamp": time.Now().UnixMilli()},
		})
	default:
		c.enqueue(errorMessage("Unknown message type"))
	}
}

func (c *Client) record(msgType, direction string) {
	if c.hub.metrics != nil {
		c.hub.metrics.WSMessage(msgType, direction)
	}
}

func errorMessage(text string) Message {
	return Message{Type: TypeError, Data: map[string]string{"message": text}}
}
