package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"coffee-shop/internal/domain"
)

type fakeConn struct {
	mu       sync.Mutex
	writeErr error
	frames   [][]byte
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.frames = append(c.frames, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestBroadcast_DropsFailingConnections(t *testing.T) {
	hub := NewHub()
	good := &fakeConn{}
	bad := &fakeConn{writeErr: errors.New("broken pipe")}
	hub.Add(good)
	hub.Add(bad)

	hub.Broadcast([]byte("hello"))

	require.Equal(t, 1, hub.Count())
	require.Equal(t, [][]byte{[]byte("hello")}, good.frames)
	require.True(t, bad.closed)
}

func TestBroadcast_NoClientsIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Broadcast([]byte("hello"))
	require.Zero(t, hub.Count())
}

func TestServeHTTP_PingPong(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "pong", string(data))

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestRun_ForwardsPublishedOrders(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubsub.Close()

	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx, pubsub) }()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	pub, err := NewPublisher(pubsub)
	require.NoError(t, err)
	order := domain.Order{ID: "o-1", UserID: "u-1", TotalAmount: 7.5}
	probe := &fakeConn{}
	hub.Add(probe)
	// Run subscribes asynchronously; publish until the probe sees a frame.
	require.Eventually(t, func() bool {
		if err := pub.PublishOrder(context.Background(), order); err != nil {
			return false
		}
		probe.mu.Lock()
		defer probe.mu.Unlock()
		return len(probe.frames) > 0
	}, 3*time.Second, 50*time.Millisecond)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	require.Equal(t, EventNewOrder, ev.Type)
	require.Equal(t, "o-1", ev.Order.ID)
	require.Equal(t, 7.5, ev.Order.TotalAmount)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestNewPublisher_RejectsNil(t *testing.T) {
	_, err := NewPublisher(nil)
	require.Error(t, err)
}
