package pubsub

import (
	"testing"
	"time"
)

func receive(t *testing.T, sub Subscription) *Message {
	t.Helper()
	select {
	case msg := <-sub.Chan():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for a message")
		return nil
	}
}

func TestPublishThenLateSubscribeReplays(t *testing.T) {
	ps := NewInMemoryPubSub()
	defer ps.Close()

	if err := ps.Publish("events", &Message{Payload: "first"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := ps.Publish("events", &Message{Payload: "second"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	sub, err := ps.Subscribe("events", "late-consumer")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if msg := receive(t, sub); msg.Payload != "first" {
		t.Errorf("First replayed payload = %v", msg.Payload)
	}
	if msg := receive(t, sub); msg.Payload != "second" {
		t.Errorf("Second replayed payload = %v", msg.Payload)
	}
}

func TestLiveDeliveryPreservesPayloadType(t *testing.T) {
	ps := NewInMemoryPubSub()
	defer ps.Close()

	sub, err := ps.Subscribe("events", "consumer")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	type payload struct{ N int }
	if err := ps.Publish("events", &Message{Payload: payload{N: 42}}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	msg := receive(t, sub)
	typed, ok := msg.Payload.(payload)
	if !ok {
		t.Fatalf("Payload lost its type across the bridge: %T", msg.Payload)
	}
	if typed.N != 42 {
		t.Errorf("Payload = %+v", typed)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Publish did not stamp a timestamp")
	}
}

func TestSubscribeIsIdempotentPerConsumer(t *testing.T) {
	ps := NewInMemoryPubSub()
	defer ps.Close()

	first, err := ps.Subscribe("events", "consumer")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	second, err := ps.Subscribe("events", "consumer")
	if err != nil {
		t.Fatalf("Second subscribe failed: %v", err)
	}
	if first != second {
		t.Error("Same consumer should get the same subscription back")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	ps := NewInMemoryPubSub()
	defer ps.Close()

	sub, err := ps.Subscribe("events", "consumer")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := ps.Unsubscribe("events", "consumer"); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	select {
	case _, open := <-sub.Chan():
		if open {
			t.Error("Received a message after unsubscribe")
		}
	case <-time.After(2 * time.Second):
		t.Error("Channel not closed after unsubscribe")
	}
}
