package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialGateway(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestGatewayPublishReply(t *testing.T) {
	b := NewBroker()
	b.Subscribe("users.register", HandlerFunc(func(_ context.Context, msg Message) (any, error) {
		var u user
		if err := msg.Decode(&u); err != nil {
			return nil, err
		}
		return map[string]any{"user_id": u.UserID}, nil
	}))

	srv := httptest.NewServer(NewGateway(b))
	defer srv.Close()

	conn := dialGateway(t, srv)
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":  "publish",
		"topic": "users.register",
		"data":  map[string]any{"user_id": 7, "user": "Jill"},
	}))

	f := readFrame(t, conn)
	assert.Equal(t, FrameReply, f.Type)
	assert.Equal(t, "users.register", f.Topic)
	assert.JSONEq(t, `{"user_id":7}`, string(f.Data))
}

func TestGatewayPublishError(t *testing.T) {
	srv := httptest.NewServer(NewGateway(NewBroker()))
	defer srv.Close()

	conn := dialGateway(t, srv)
	require.NoError(t, conn.WriteJSON(Frame{Type: FramePublish, Topic: "missing"}))

	f := readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Contains(t, f.Error, "no subscriber")
}

func TestGatewaySubscribe(t *testing.T) {
	b := NewBroker()
	gw := NewGateway(b)
	srv := httptest.NewServer(gw)
	defer srv.Close()

	listener := dialGateway(t, srv)
	require.NoError(t, listener.WriteJSON(Frame{Type: FrameSubscribe, Topic: "output_channel"}))
	ack := readFrame(t, listener)
	require.Equal(t, FrameSubscribed, ack.Type)

	publisher := dialGateway(t, srv)
	require.NoError(t, publisher.WriteJSON(map[string]any{
		"type":  "publish",
		"topic": "output_channel",
		"data":  map[string]string{"message": "hello"},
	}))

	f := readFrame(t, listener)
	assert.Equal(t, FrameMessage, f.Type)
	assert.Equal(t, "output_channel", f.Topic)
	assert.JSONEq(t, `{"message":"hello"}`, string(f.Data))

	reply := readFrame(t, publisher)
	assert.Equal(t, FrameReply, reply.Type)
	assert.Equal(t, 2, gw.ClientCount())
}

func TestGatewayInvalidFrames(t *testing.T) {
	srv := httptest.NewServer(NewGateway(NewBroker()))
	defer srv.Close()

	conn := dialGateway(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	f := readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Contains(t, f.Error, "invalid frame")

	require.NoError(t, conn.WriteJSON(Frame{Type: FramePublish}))
	f = readFrame(t, conn)
	assert.Equal(t, "missing topic", f.Error)

	require.NoError(t, conn.WriteJSON(Frame{Type: "bogus", Topic: "t"}))
	f = readFrame(t, conn)
	assert.Contains(t, f.Error, "unknown frame type")
}

func TestGatewayClose(t *testing.T) {
	gw := NewGateway(NewBroker())
	srv := httptest.NewServer(gw)
	defer srv.Close()

	conn := dialGateway(t, srv)
	require.NoError(t, conn.WriteJSON(Frame{Type: FrameSubscribe, Topic: "t"}))
	readFrame(t, conn)

	gw.Close()
	assert.Equal(t, 0, gw.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
