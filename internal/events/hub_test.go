package events

import (
	"testing"
	"time"
)

func TestHubDeliversToSubscribers(t *testing.T) {
	h := NewHub(4, nil)
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(AuctionClosed{AuctionID: 3, FinalPrice: 90, Buyer: "buyer"})

	select {
	case ev := <-ch:
		if ev.AuctionID != 3 || ev.FinalPrice != 90 || ev.Buyer != "buyer" {
			t.Fatalf("event=%+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event delivered")
	}
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	h := NewHub(1, nil)
	_, cancel := h.Subscribe()
	defer cancel()

	h.Publish(AuctionClosed{AuctionID: 1})
	h.Publish(AuctionClosed{AuctionID: 2})

	if h.Dropped() != 1 {
		t.Fatalf("dropped=%d want 1", h.Dropped())
	}
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	h := NewHub(1, nil)
	_, cancel := h.Subscribe()
	if h.Subscribers() != 1 {
		t.Fatalf("subscribers=%d want 1", h.Subscribers())
	}
	cancel()
	if h.Subscribers() != 0 {
		t.Fatalf("subscribers=%d want 0", h.Subscribers())
	}
	// Publishing after cancel must not panic or block.
	h.Publish(AuctionClosed{AuctionID: 9})
}
