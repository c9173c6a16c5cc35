package monitor

import (
	"log/slog"
	"testing"
)

func TestNotifier_TopicAndWildcardDelivery(t *testing.T) {
	n := NewNotifier(slog.Default())

	var topic, all int
	n.Subscribe(TopicCallUpdated, func(Notification) { topic++ })
	n.Subscribe(TopicAll, func(Notification) { all++ })

	n.Emit(Notification{Topic: TopicCallUpdated})
	n.Emit(Notification{Topic: TopicCallAdded})

	if topic != 1 {
		t.Fatalf("topic subscriber expected 1 delivery, got %d", topic)
	}
	if all != 2 {
		t.Fatalf("wildcard subscriber expected 2 deliveries, got %d", all)
	}
}

func TestNotifier_PanickingSubscriberDoesNotStopSiblings(t *testing.T) {
	n := NewNotifier(slog.Default())

	delivered := 0
	n.Subscribe(TopicError, func(Notification) { panic("bad subscriber") })
	n.Subscribe(TopicError, func(Notification) { delivered++ })

	n.Emit(Notification{Topic: TopicError})

	if delivered != 1 {
		t.Fatalf("sibling handler must still run, got %d deliveries", delivered)
	}
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := NewNotifier(slog.Default())

	calls := 0
	unsub := n.Subscribe(TopicCallAdded, func(Notification) { calls++ })
	n.Emit(Notification{Topic: TopicCallAdded})
	unsub()
	n.Emit(Notification{Topic: TopicCallAdded})

	if calls != 1 {
		t.Fatalf("expected 1 delivery before unsubscribe, got %d", calls)
	}
}
