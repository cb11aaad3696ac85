package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// FrameType is the type of a gateway frame.
type FrameType string

const (
	FramePublish    FrameType = "publish"
	FrameSubscribe  FrameType = "subscribe"
	FrameReply      FrameType = "reply"
	FrameSubscribed FrameType = "subscribed"
	FrameMessage    FrameType = "message"
	FrameError      FrameType = "error"
)

// Frame is exchanged with gateway clients as a JSON text message.
//
//	{"type": "publish", "topic": "users.register", "data": {...}}  // client → gateway
//	{"type": "subscribe", "topic": "users.registered"}            // client → gateway
//	{"type": "reply", "topic": "users.register", "data": {...}}    // gateway → client
//	{"type": "subscribed", "topic": "users.registered"}
//	{"type": "message", "topic": "users.registered", "data": {...}}
//	{"type": "error", "topic": "...", "error": "..."}
type Frame struct {
	Type  FrameType       `json:"type"`
	Topic string          `json:"topic,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Gateway exposes a Broker over WebSocket.
type Gateway struct {
	broker   *Broker
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*gatewayClient]struct{}
}

type gatewayClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	cancels []func()
}

func (c *gatewayClient) write(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// NewGateway creates a gateway for broker. It logs through the broker's
// logger.
func NewGateway(broker *Broker) *Gateway {
	return &Gateway{
		broker:  broker,
		logger:  broker.logger,
		clients: make(map[*gatewayClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the connection and serves frames until the client
// disconnects.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := g.upgrader.Upgrade(w, req, nil)
	if err != nil {
		g.logger.Debug("stream gateway upgrade failed", "error", err)
		return
	}

	client := &gatewayClient{conn: conn}
	g.mu.Lock()
	g.clients[client] = struct{}{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.clients, client)
		g.mu.Unlock()
		for _, cancel := range client.cancels {
			cancel()
		}
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			client.write(Frame{Type: FrameError, Error: "invalid frame: " + err.Error()})
			continue
		}
		g.handleFrame(req, client, f)
	}
}

func (g *Gateway) handleFrame(req *http.Request, client *gatewayClient, f Frame) {
	if f.Topic == "" {
		client.write(Frame{Type: FrameError, Error: "missing topic"})
		return
	}

	switch f.Type {
	case FramePublish:
		reply, err := g.broker.Publish(req.Context(), f.Topic, Message{Data: f.Data})
		if err != nil {
			client.write(Frame{Type: FrameError, Topic: f.Topic, Error: err.Error()})
			return
		}
		out := Frame{Type: FrameReply, Topic: f.Topic}
		if reply != nil {
			data, err := json.Marshal(reply)
			if err != nil {
				client.write(Frame{Type: FrameError, Topic: f.Topic, Error: err.Error()})
				return
			}
			out.Data = data
		}
		client.write(out)

	case FrameSubscribe:
		topic := f.Topic
		cancel := g.broker.Listen(topic, func(msg Message) {
			if err := client.write(Frame{Type: FrameMessage, Topic: topic, Data: msg.Data}); err != nil {
				g.logger.Debug("stream gateway write failed", "topic", topic, "error", err)
			}
		})
		client.cancels = append(client.cancels, cancel)
		client.write(Frame{Type: FrameSubscribed, Topic: topic})

	default:
		client.write(Frame{Type: FrameError, Topic: f.Topic, Error: "unknown frame type " + string(f.Type)})
	}
}

// ClientCount returns the number of connected clients.
func (g *Gateway) ClientCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

// Close closes all client connections.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for client := range g.clients {
		client.conn.Close()
		delete(g.clients, client)
	}
}
