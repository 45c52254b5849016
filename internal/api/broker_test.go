package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	id := "s1"
	ch := b.Subscribe(id)

	evt := ProgressEvent{SolveID: id, Type: "solve.progress", Generation: 3, BestCost: 12.5}
	b.Publish(id, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type || got.Generation != 3 || got.BestCost != 12.5 {
			t.Fatalf("got %+v, want %+v", got, evt)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(id, ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("channel not closed after unsubscribe")
	}
}

func TestBrokerIsolatesSolves(t *testing.T) {
	b := NewBroker()
	a := b.Subscribe("a")
	defer b.Unsubscribe("a", a)

	b.Publish("b", ProgressEvent{SolveID: "b", Type: "solve.progress"})
	select {
	case evt := <-a:
		t.Fatalf("subscriber for a received event for b: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerDropsWhenSubscriberFull(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("s")
	defer b.Unsubscribe("s", ch)

	// Publish never blocks even when nothing drains the channel.
	for i := 0; i < 100; i++ {
		b.Publish("s", ProgressEvent{SolveID: "s", Type: "solve.progress", Generation: i})
	}
	if got := <-ch; got.Generation != 0 {
		t.Fatalf("first buffered event generation = %d, want 0", got.Generation)
	}
}
