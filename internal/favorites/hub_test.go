package favorites

import (
	"testing"
	"time"
)

func TestHub(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.Subscribe("client:a")
	if hub.Subscribers("client:a") != 1 {
		t.Fatalf("Expected 1 subscriber after Subscribe, got %d", hub.Subscribers("client:a"))
	}

	hub.Publish(Event{Namespace: "client:a", Kind: EventAdded, MovieID: 1})
	select {
	case evt := <-events:
		if evt.MovieID != 1 {
			t.Errorf("Subscriber received wrong event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("Subscriber did not receive event in time")
	}

	cancel()
	cancel()
	if hub.Subscribers("client:a") != 0 {
		t.Fatalf("Expected 0 subscribers after cancel, got %d", hub.Subscribers("client:a"))
	}
	if _, ok := <-events; ok {
		t.Fatal("Expected channel to be closed after cancel")
	}

	// Publishing with nobody listening must not block or panic.
	hub.Publish(Event{Namespace: "client:a", Kind: EventCleared})
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	hub := NewHub()
	events, cancel := hub.Subscribe("ns")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Publish(Event{Namespace: "ns", Kind: EventAdded, MovieID: i + 1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
	if len(events) != subscriberBuffer {
		t.Fatalf("Expected buffered events = %d, got %d", subscriberBuffer, len(events))
	}
}
