package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ferretcode/lovebug/internal/types"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestHub(t *testing.T, origins ...string) (*Hub, *httptest.Server) {
	t.Helper()

	if len(origins) == 0 {
		origins = []string{"*"}
	}

	hub := NewHub(origins, discardLogger)
	server := httptest.NewServer(http.HandlerFunc(hub.HandleConnection))
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})

	return hub, server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws"+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var message map[string]any
	require.NoError(t, json.Unmarshal(data, &message))
	return message
}

func waitForConnections(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ConnectionCount() == n }, 5*time.Second, 10*time.Millisecond)
}

func TestHub_Pong(t *testing.T) {
	_, server := newTestHub(t)
	conn := dial(t, server, "")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))

	message := readJSON(t, conn)
	assert.Equal(t, "pong", message["type"])
	assert.Equal(t, "연결 유지됨", message["message"])
}

func TestHub_Broadcast(t *testing.T) {
	hub, server := newTestHub(t)
	first := dial(t, server, "?user_id=alice")
	second := dial(t, server, "")
	waitForConnections(t, hub, 2)

	delivered := hub.Broadcast(types.RealTimeUpdate{
		Type:      types.UpdateTypeLovebug,
		Data:      []types.Report{{TweetID: "1", Content: "러브버그"}},
		Timestamp: time.Now(),
	})
	assert.Equal(t, 2, delivered)

	for _, conn := range []*websocket.Conn{first, second} {
		message := readJSON(t, conn)
		assert.Equal(t, types.UpdateTypeLovebug, message["type"])
		data := message["data"].([]any)
		require.Len(t, data, 1)
		assert.Equal(t, "1", data[0].(map[string]any)["tweet_id"])
	}
}

func TestHub_SendToUser(t *testing.T) {
	hub, server := newTestHub(t)
	alice := dial(t, server, "?user_id=alice")
	dial(t, server, "?user_id=bob")
	waitForConnections(t, hub, 2)

	assert.Equal(t, []string{"alice", "bob"}, hub.ConnectedUsers())

	assert.Equal(t, 1, hub.SendToUser("alice", map[string]string{"type": "notice"}))
	assert.Equal(t, "notice", readJSON(t, alice)["type"])

	assert.Equal(t, 0, hub.SendToUser("carol", map[string]string{"type": "notice"}))
}

func TestHub_Disconnect(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dial(t, server, "")
	waitForConnections(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	waitForConnections(t, hub, 0)
	assert.Equal(t, 0, hub.Broadcast(types.RealTimeUpdate{Type: types.UpdateTypeLovebug}))
}

func TestHub_DropsFullQueue(t *testing.T) {
	hub := NewHub([]string{"*"}, discardLogger)

	// a client nobody drains
	c := &client{send: make(chan []byte, 1)}
	hub.register(c)

	assert.True(t, hub.enqueue(c, []byte("1")))
	assert.False(t, hub.enqueue(c, []byte("2")))
	assert.Equal(t, 0, hub.ConnectionCount())

	// the queue was closed on removal
	<-c.send
	_, open := <-c.send
	assert.False(t, open)
}

func TestCheckOrigin(t *testing.T) {
	check := checkOrigin([]string{"https://lovebug.example"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://lovebug.example")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(r))

	assert.True(t, checkOrigin([]string{"*"})(r))
	assert.True(t, checkOrigin(nil)(r))
	assert.True(t, checkOrigin([]string{})(r))
}

func TestHub_RejectsOrigin(t *testing.T) {
	_, server := newTestHub(t, "https://lovebug.example")

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
