package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"boilerplate_backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func startServer(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(metrics.New())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", NewWebSocketHandler(hub).ServeWS)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestConnectionMessage(t *testing.T) {
	hub, url := startServer(t)
	conn := dial(t, url)

	msg := read(t, conn)
	assert.Equal(t, TypeConnection, msg.Type)
	clientID, _ := msg.Data["clientId"].(string)
	assert.Len(t, clientID, 36)

	assert.Eventually(t, func() bool { return hub.IsClientConnected(clientID) }, time.Second, 10*time.Millisecond)
}

func TestPingPong(t *testing.T) {
	_, url := startServer(t)
	conn := dial(t, url)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	msg := read(t, conn)
	assert.Equal(t, TypePong, msg.Type)
	assert.Contains(t, msg.Data, "timestamp")
}

func TestInvalidMessages(t *testing.T) {
	_, url := startServer(t)
	conn := dial(t, url)
	read(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg := read(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, "Invalid message format", msg.Data["message"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe"}))
	msg = read(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, "Unknown message type", msg.Data["message"])
}

func TestShutdownNotifiesClients(t *testing.T) {
	hub, url := startServer(t)
	conn := dial(t, url)
	read(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Shutdown()

	msg := read(t, conn)
	assert.Equal(t, TypeShutdown, msg.Type)
	assert.Equal(t, 0, hub.ClientCount())

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, url := startServer(t)
	conn := dial(t, url)
	read(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
