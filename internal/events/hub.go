package events

import (
	"sync"
	"time"
)

const (
	// TopicAttendance fires after a check-in or check-out is accepted
	TopicAttendance = "attendance.changed"
	// TopicSession fires whenever the work-session state changes
	TopicSession = "session.changed"
	// TopicApproval fires after supervisor approval actions
	TopicApproval = "approval.changed"

	// All subscribes to every topic
	All = "*"
)

// Event is a notification passed between components of the agent
type Event struct {
	Topic string      `json:"topic"`
	Data  interface{} `json:"data,omitempty"`
	At    time.Time   `json:"at"`
}

// Hub fans events out to subscribers by topic
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber for topic and returns the event channel
// and cleanup function
func (h *Hub) Subscribe(topic string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)

	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan Event]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[topic], ch)
			close(ch)
			if len(h.subscribers[topic]) == 0 {
				delete(h.subscribers, topic)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to the subscribers of its topic and to All
// subscribers. Full channels are skipped so a slow subscriber cannot block
// the publisher.
func (h *Hub) Publish(topic string, data interface{}) {
	event := Event{Topic: topic, Data: data, At: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, key := range []string{topic, All} {
		for ch := range h.subscribers[key] {
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers for topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}
