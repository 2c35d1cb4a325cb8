// Package events fans workflow events out to websocket subscribers.
// Delivery is best effort: a slow or absent consumer never blocks a
// transition.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"k8s.io/klog/v2"
)

const (
	subscriberBuffer = 16
	writeTimeout     = 5 * time.Second
)

// Envelope is the wire form of a published event.
type Envelope struct {
	Event   string    `json:"event"`
	Payload any       `json:"payload"`
	Time    time.Time `json:"time"`
}

// Hub is an in-process broadcast channel. It satisfies workflow.Publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Envelope]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan Envelope]struct{})}
}

// Publish delivers the event to every subscriber, dropping it for any whose
// buffer is full.
func (h *Hub) Publish(event string, payload any) {
	env := Envelope{Event: event, Payload: payload, Time: time.Now()}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- env:
		default:
			klog.V(3).Infof("dropping %s event for slow subscriber", event)
		}
	}
}

// Subscribe registers a new consumer. The returned cancel func must be
// called when the consumer goes away.
func (h *Hub) Subscribe() (<-chan Envelope, func()) {
	ch := make(chan Envelope, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// ServeConn pumps events to one websocket connection until it breaks or the
// subscription is cancelled.
func (h *Hub) ServeConn(conn *websocket.Conn) {
	ch, cancel := h.Subscribe()
	defer cancel()
	defer conn.Close()

	for env := range ch {
		data, err := json.Marshal(env)
		if err != nil {
			klog.Warningf("marshal event %s: %v", env.Event, err)
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
