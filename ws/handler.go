package ws

import (
	"net/http"

	"boilerplate_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WebSocketHandler struct {
	Hub *Hub
}

func NewWebSocketHandler(hub *Hub) *WebSocketHandler {
	return &WebSocketHandler{
		Hub: hub,
	}
}

// ServeWS godoc
// @Summary  WebSocket ping/pong канал
// @Tags     websocket
// @Success  101
// @Router   /ws [get]
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "WebSocket upgrade error", err)
		return
	}

	client := newClient(uuid.NewString(), conn, h.Hub)
	if !h.Hub.addClient(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	client.enqueue(Message{
		Type: TypeConnection,
		Data: map[string]string{"clientId": client.ID},
	})

	go client.writePump()
	go client.readPump()
}
