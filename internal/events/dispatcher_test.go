package events

import (
	"sync"
	"testing"
	"time"
)

type recordingSubscriber struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
}

func (r *recordingSubscriber) Handle(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.done <- struct{}{}
}

type panickySubscriber struct{}

func (panickySubscriber) Handle(Event) { panic("boom") }

func TestDispatch_DeliversToAllSubscribers(t *testing.T) {
	rec := &recordingSubscriber{done: make(chan struct{}, 4)}
	d := NewDispatcher(panickySubscriber{}, rec)

	d.Dispatch(Event{Type: BookingCommitted, BookingID: 1})
	d.Dispatch(Event{Type: BookingCancelled, BookingID: 1})

	for i := 0; i < 2; i++ {
		select {
		case <-rec.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(rec.events))
	}

	// A panicking subscriber must not break delivery, and dispatch fills
	// the envelope.
	ev := rec.events[0]
	if ev.ID == "" || ev.OccurredAt.IsZero() {
		t.Fatalf("expected id and timestamp filled, got %+v", ev)
	}
	if ev.Type != BookingCommitted {
		t.Fatalf("expected delivery in order, got %s first", ev.Type)
	}
}
