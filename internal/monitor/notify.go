package monitor

import (
	"log/slog"
	"sync"
	"time"
)

// Notification topics. Per-event fan-out topics take the form
// "call:<eventType>" (see EventTopic).
const (
	TopicCallAdded         = "call:added"
	TopicCallRemoved       = "call:removed"
	TopicCallUpdated       = "call:updated"
	TopicStatusChanged     = "call:status_changed"
	TopicError             = "error"
	TopicMonitoringStarted = "monitoring:started"
	TopicMonitoringStopped = "monitoring:stopped"

	// TopicAll subscribes to every notification.
	TopicAll = "*"
)

// EventTopic is the fan-out topic for one event type.
func EventTopic(eventType string) string { return "call:" + eventType }

// Notification is one message on the conduit. Exactly one of Record, Change,
// Event or Err is populated, depending on the topic.
type Notification struct {
	Topic     string        `json:"topic"`
	CallID    string        `json:"call_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Record    *CallRecord   `json:"record,omitempty"`
	Change    *StatusChange `json:"change,omitempty"`
	Event     *CallEvent    `json:"event,omitempty"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
}

// Handler consumes notifications. Delivery is synchronous; keep handlers
// short or hand off to a channel.
type Handler func(Notification)

// Notifier broadcasts lifecycle and error signals to subscribers, keyed by
// topic. A failing subscriber never crashes the engine: panics are recovered
// and logged, and siblings still run.
type Notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
	log    *slog.Logger
}

func NewNotifier(log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{subs: make(map[string]map[int]Handler), log: log}
}

// Subscribe registers h for topic (TopicAll for everything) and returns an
// unsubscribe func.
func (n *Notifier) Subscribe(topic string, h Handler) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	if n.subs[topic] == nil {
		n.subs[topic] = make(map[int]Handler)
	}
	n.subs[topic][id] = h

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if hs, ok := n.subs[topic]; ok {
			delete(hs, id)
			if len(hs) == 0 {
				delete(n.subs, topic)
			}
		}
	}
}

// Emit delivers ntf to topic subscribers and wildcard subscribers. Delivery
// order within a topic is unspecified; handlers must not depend on it.
func (n *Notifier) Emit(ntf Notification) {
	if ntf.Err != nil && ntf.Error == "" {
		ntf.Error = ntf.Err.Error()
	}

	n.mu.RLock()
	handlers := make([]Handler, 0, 4)
	for _, h := range n.subs[ntf.Topic] {
		handlers = append(handlers, h)
	}
	for _, h := range n.subs[TopicAll] {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	for _, h := range handlers {
		n.deliver(h, ntf)
	}
}

func (n *Notifier) deliver(h Handler, ntf Notification) {
	defer func() {
		if p := recover(); p != nil {
			n.log.Error("notification handler panicked", "topic", ntf.Topic, "call_id", ntf.CallID, "panic", p)
		}
	}()
	h(ntf)
}
