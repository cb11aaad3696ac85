package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrNoSubscriber is returned by Publish when nothing consumes the topic.
var ErrNoSubscriber = errors.New("stream: no subscriber for topic")

// Message is a single published message.
type Message struct {
	Topic   string            `json:"topic"`
	Data    json.RawMessage   `json:"data,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Decode unmarshals the message payload into v.
func (m Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("stream: empty payload on %q", m.Topic)
	}
	return json.Unmarshal(m.Data, v)
}

// Handler consumes messages of one topic. A non-nil result is the reply.
type Handler interface {
	Handle(ctx context.Context, msg Message) (any, error)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, msg Message) (any, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, msg Message) (any, error) {
	return f(ctx, msg)
}

// Listener observes every message published on a topic.
type Listener func(msg Message)

// Option configures a Broker.
type Option func(*Broker)

// WithLogger sets the broker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Broker) {
		b.logger = logger
	}
}

// Broker is an in-process topic broker. One handler may be subscribed per
// topic; any number of listeners may observe a topic.
type Broker struct {
	mu        sync.RWMutex
	handlers  map[string]Handler
	listeners map[string]map[uint64]Listener
	nextID    uint64
	logger    *slog.Logger
}

// NewBroker creates an empty broker.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		handlers:  make(map[string]Handler),
		listeners: make(map[string]map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Subscribe binds h to topic, replacing any previous handler.
func (b *Broker) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	b.handlers[topic] = h
	b.mu.Unlock()

	b.logger.Debug("stream subscriber bound", "topic", topic)
}

// ReplacesBinding reports true: Subscribe overwrites the handler of a bound
// topic.
func (b *Broker) ReplacesBinding() bool { return true }

// Unsubscribe removes the handler bound to topic.
func (b *Broker) Unsubscribe(topic string) {
	b.mu.Lock()
	delete(b.handlers, topic)
	b.mu.Unlock()
}

// Topics returns the subscribed topics in sorted order.
func (b *Broker) Topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	topics := make([]string, 0, len(b.handlers))
	for topic := range b.handlers {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Listen registers fn for every message published on topic. Call the
// returned function to stop listening.
func (b *Broker) Listen(topic string, fn Listener) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.listeners[topic] == nil {
		b.listeners[topic] = make(map[uint64]Listener)
	}
	b.listeners[topic][id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners[topic], id)
			if len(b.listeners[topic]) == 0 {
				delete(b.listeners, topic)
			}
		})
	}
}

// Publish delivers v to the listeners and the handler of topic and returns
// the handler's reply. v may be a Message, json.RawMessage, []byte (raw
// JSON) or any JSON-marshalable value.
func (b *Broker) Publish(ctx context.Context, topic string, v any) (any, error) {
	msg, err := toMessage(topic, v)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	h := b.handlers[topic]
	listeners := make([]Listener, 0, len(b.listeners[topic]))
	for _, fn := range b.listeners[topic] {
		listeners = append(listeners, fn)
	}
	b.mu.RUnlock()

	if h == nil && len(listeners) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSubscriber, topic)
	}

	for _, fn := range listeners {
		fn(msg)
	}

	if h == nil {
		return nil, nil
	}
	return h.Handle(context.WithValue(ctx, publisherKey{}, b), msg)
}

func toMessage(topic string, v any) (Message, error) {
	switch val := v.(type) {
	case Message:
		val.Topic = topic
		return val, nil
	case json.RawMessage:
		return Message{Topic: topic, Data: val}, nil
	case []byte:
		return Message{Topic: topic, Data: json.RawMessage(val)}, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return Message{}, fmt.Errorf("stream: encoding payload for %q: %w", topic, err)
		}
		return Message{Topic: topic, Data: data}, nil
	}
}

// Publisher publishes to a broker. *Broker implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, v any) (any, error)
}

type publisherKey struct{}

// PublisherFrom returns the broker that is dispatching the current message.
func PublisherFrom(ctx context.Context) (Publisher, bool) {
	pub, ok := ctx.Value(publisherKey{}).(Publisher)
	return pub, ok
}

// WithReply wraps h so that every non-nil result is also published to
// topic on the dispatching broker. Publishing to a topic nobody consumes is
// not an error.
func WithReply(topic string, h Handler) Handler {
	return HandlerFunc(func(ctx context.Context, msg Message) (any, error) {
		result, err := h.Handle(ctx, msg)
		if err != nil || result == nil {
			return result, err
		}
		pub, ok := PublisherFrom(ctx)
		if !ok {
			return result, nil
		}
		if _, perr := pub.Publish(ctx, topic, result); perr != nil && !errors.Is(perr, ErrNoSubscriber) {
			return result, perr
		}
		return result, nil
	})
}
