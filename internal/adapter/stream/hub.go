package stream

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"curefront/internal/domain/outbreak"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/websocket"
)

// wsConn is the slice of *websocket.Conn the hub needs; tests substitute
// an in-memory implementation.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

type subscriber struct {
	conn wsConn
	mu   sync.Mutex
}

// Hub broadcasts engine notifications to live WebSocket observers.
// Observers are read-only: inbound frames are drained and discarded, and
// a write failure drops the subscriber.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uint64]*subscriber
	nextID      atomic.Uint64
	upgrader    websocket.HertzUpgrader
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uint64]*subscriber),
	}
}

// Publish implements ports.EventPublisher. Events go out as individual
// JSON text frames in emission order.
func (h *Hub) Publish(events []outbreak.Event) {
	if len(events) == 0 {
		return
	}
	frames := make([][]byte, 0, len(events))
	for _, evt := range events {
		b, err := json.Marshal(evt)
		if err != nil {
			log.Printf("stream: marshal %s event: %v", evt.Type, err)
			continue
		}
		frames = append(frames, b)
	}

	for id, sub := range h.snapshotSubscribers() {
		if err := sub.writeFrames(frames); err != nil {
			h.drop(id)
		}
	}
}

func (s *subscriber) writeFrames(frames [][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, frame := range frames {
		if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) snapshotSubscribers() map[uint64]*subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[uint64]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		out[id] = sub
	}
	return out
}

func (h *Hub) attach(conn wsConn) uint64 {
	id := h.nextID.Add(1)
	h.mu.Lock()
	h.subscribers[id] = &subscriber{conn: conn}
	h.mu.Unlock()
	return id
}

func (h *Hub) drop(id uint64) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
	if ok {
		_ = sub.conn.Close()
	}
}

// SubscriberCount reports live observers, for the KPI surface.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// HandleUpgrade is the hertz handler for the event stream endpoint. It
// blocks for the life of the connection, draining inbound frames until
// the peer goes away.
func (h *Hub) HandleUpgrade(ctx *app.RequestContext) error {
	return h.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		id := h.attach(conn)
		defer h.drop(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
