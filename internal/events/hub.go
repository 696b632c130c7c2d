// Package events fans out auction-closed notifications to in-process
// subscribers and the websocket stream.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// AuctionClosed is emitted exactly once per successful purchase.
type AuctionClosed struct {
	AuctionID  uint64    `json:"auction_id"`
	Item       string    `json:"item"`
	FinalPrice uint64    `json:"final_price"`
	Buyer      string    `json:"buyer"`
	At         time.Time `json:"at"`
}

// Hub delivers events to buffered subscriber channels. Slow subscribers
// drop events rather than block settlement.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan AuctionClosed
	nextID  uint64
	buf     int
	dropped uint64
	logger  *zap.Logger
}

func NewHub(buf int, logger *zap.Logger) *Hub {
	if buf <= 0 {
		buf = 16
	}
	return &Hub{
		subs:   map[uint64]chan AuctionClosed{},
		buf:    buf,
		logger: logger,
	}
}

// Subscribe returns a receive channel and a cancel func that closes it.
func (h *Hub) Subscribe() (<-chan AuctionClosed, func()) {
	ch := make(chan AuctionClosed, h.buf)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if existing, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(existing)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber without blocking.
func (h *Hub) Publish(ev AuctionClosed) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			atomic.AddUint64(&h.dropped, 1)
			if h.logger != nil {
				h.logger.Warn("event dropped for slow subscriber",
					zap.Uint64("auction_id", ev.AuctionID),
				)
			}
		}
	}
}

// Dropped returns the count of events discarded for slow subscribers.
func (h *Hub) Dropped() uint64 {
	return atomic.LoadUint64(&h.dropped)
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
