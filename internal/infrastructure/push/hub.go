package push

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
)

// RFC 6455 opcodes, identical in gorilla and fasthttp websocket.
const (
	textMessage  = 1
	closeMessage = 8
	pingMessage  = 9
)

const (
	_defaultSendBuffer     = 64
	_defaultWriteWait      = 10 * time.Second
	_defaultPongWait       = 60 * time.Second
	_defaultMaxMessageSize = 512
)

// Conn is the subset of a websocket connection the hub needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

type Observer interface {
	ViewersChanged(n int)
	EventBroadcast(topic string, delivered int)
	ViewerDropped()
}

type nopObserver struct{}

func (nopObserver) ViewersChanged(int)          {}
func (nopObserver) EventBroadcast(string, int) {}
func (nopObserver) ViewerDropped()              {}

// Message is the frame sent to viewers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type broadcastMessage struct {
	topic   string
	payload []byte
}

type client struct {
	conn Conn
	send chan []byte
	quit chan struct{} // closed by Serve once the viewer stops reading
	done chan struct{} // closed by writePump on exit
}

// Hub fans events out to every connected viewer. A single dispatch
// goroutine preserves publish order on every viewer.
type Hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan broadcastMessage

	done     chan struct{}
	stopOnce sync.Once
	viewers  atomic.Int64

	sendBuffer     int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	maxMessageSize int64

	observer Observer
	logger   logger.Interface
}

func New(l logger.Interface, opts ...Option) *Hub {
	h := &Hub{
		clients:        make(map[*client]struct{}),
		register:       make(chan *client),
		unregister:     make(chan *client),
		broadcast:      make(chan broadcastMessage),
		done:           make(chan struct{}),
		sendBuffer:     _defaultSendBuffer,
		writeWait:      _defaultWriteWait,
		pongWait:       _defaultPongWait,
		maxMessageSize: _defaultMaxMessageSize,
		observer:       nopObserver{},
		logger:         l,
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.pingPeriod == 0 {
		h.pingPeriod = h.pongWait * 9 / 10
	}

	return h
}

// Run dispatches until ctx is done or Close is called, then disconnects
// every viewer.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			h.remove(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.Close()
			return
		case <-h.done:
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.changed()
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
			}
		case msg := <-h.broadcast:
			delivered := 0
			for c := range h.clients {
				select {
				case c.send <- msg.payload:
					delivered++
				default:
					// slow viewer, it reloads and refetches
					h.remove(c)
					h.observer.ViewerDropped()
				}
			}
			h.observer.EventBroadcast(msg.topic, delivered)
		}
	}
}

func (h *Hub) remove(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.changed()
}

func (h *Hub) changed() {
	h.viewers.Store(int64(len(h.clients)))
	h.observer.ViewersChanged(len(h.clients))
}

func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Viewers() int {
	return int(h.viewers.Load())
}

// Publish broadcasts the event to the viewers connected right now.
// Delivery is best-effort: the event is dropped when the hub is closed or
// ctx ends first, and no error is returned.
func (h *Hub) Publish(ctx context.Context, event entity.Event) error {
	payload, err := json.Marshal(Message{Type: event.Kind.Topic(), Data: event.Data()})
	if err != nil {
		h.logger.Error(err, "Hub - Publish - json.Marshal")

		return nil
	}

	select {
	case h.broadcast <- broadcastMessage{topic: event.Kind.Topic(), payload: payload}:
	case <-h.done:
		h.logger.Warn("Hub - Publish - hub closed, dropped %s for image %s", event.Kind, event.ImageID)
	case <-ctx.Done():
		h.logger.Warn("Hub - Publish - %v, dropped %s for image %s", ctx.Err(), event.Kind, event.ImageID)
	}

	return nil
}

// Serve registers conn as a viewer and blocks until it disconnects.
// Nothing touches conn after Serve returns, so the caller may recycle it.
func (h *Hub) Serve(conn Conn) error {
	c := &client{
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()

		return fmt.Errorf("Hub - Serve: hub closed")
	}

	go h.writePump(c)

	err := h.readPump(c)

	select {
	case h.unregister <- c:
	case <-h.done:
	}

	close(c.quit)
	<-c.done

	return err
}

// readPump discards viewer input; it only keeps the read deadline moving on pongs.
func (h *Hub) readPump(c *client) error {
	c.conn.SetReadLimit(h.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return fmt.Errorf("Hub - readPump - c.conn.ReadMessage: %w", err)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case <-c.quit:
			return
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if !ok {
				_ = c.conn.WriteMessage(closeMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(textMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := c.conn.WriteMessage(pingMessage, nil); err != nil {
				return
			}
		}
	}
}
