package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []outgoingMessage
	err  error
}

func (s *recordingSender) SendFromSocket(_ context.Context, _, recipientID int64, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, outgoingMessage{RecipientID: recipientID, Content: content})
	return s.err
}

func (s *recordingSender) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func setupHub(t *testing.T, sender MessageSender) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	handler := NewHandler(hub, NewMessageHandler(sender, zerolog.Nop()), zerolog.Nop())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.Query("uid"), 10, 64); err == nil {
			c.Set(UserIDKey, id)
		}
		handler.HandleConnection(c)
	})
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, uid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?uid=" + uid
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestSendToUserReachesEveryConnection(t *testing.T) {
	hub, srv := setupHub(t, &recordingSender{})

	first := dial(t, srv, "7")
	second := dial(t, srv, "7")
	other := dial(t, srv, "8")
	require.Eventually(t, func() bool { return hub.ClientCount(7) == 2 && hub.ClientCount(8) == 1 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, hub.SendToUser(7, FrameMessage, map[string]string{"content": "hi"}))

	for _, conn := range []*websocket.Conn{first, second} {
		f := readFrame(t, conn)
		assert.Equal(t, FrameMessage, f.Type)
		assert.JSONEq(t, `{"content":"hi"}`, string(f.Data))
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestUnauthenticatedUpgradeIsRefused(t *testing.T) {
	_, srv := setupHub(t, &recordingSender{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestInboundFrames(t *testing.T) {
	sender := &recordingSender{}
	hub, srv := setupHub(t, sender)
	conn := dial(t, srv, "3")
	require.Eventually(t, func() bool { return hub.ClientCount(3) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","data":{"recipientId":4,"content":"yo"}}`)))
	require.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"typing"}`)))
	f := readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)

	sender.fail(errors.New("recipient not found"))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","data":{"recipientId":99,"content":"x"}}`)))
	f = readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Contains(t, string(f.Data), "recipient not found")
}

func TestSendAfterShutdown(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	// Fill the buffer so the next send has to observe the closed hub
	for i := 0; i < cap(hub.deliver); i++ {
		hub.deliver <- delivery{}
	}
	assert.ErrorIs(t, hub.SendToUser(1, FrameMessage, "x"), ErrHubClosed)
}
