package auction

import (
	"fmt"
	"sync"
)

// Registry owns the auction arena, the administrator identity, and the
// fee rate. All mutating operations take the write lock, which gives the
// single-writer ordering the settlement flow depends on.
type Registry struct {
	mu       sync.RWMutex
	owner    string
	feeRate  uint64 // percent of final price
	auctions []Auction
}

const DefaultFeeRatePercent = 10

// NewRegistry builds a registry with the given administrator identity.
// A feeRatePercent of 0 falls back to the default 10%.
func NewRegistry(owner string, feeRatePercent uint64) *Registry {
	if feeRatePercent == 0 {
		feeRatePercent = DefaultFeeRatePercent
	}
	return &Registry{
		owner:   owner,
		feeRate: feeRatePercent,
	}
}

// Owner returns the administrator identity, which is also the fee recipient.
func (r *Registry) Owner() string {
	return r.owner
}

// FeeRatePercent returns the fee share taken from each sale.
func (r *Registry) FeeRatePercent() uint64 {
	return r.feeRate
}

// Len returns the number of auctions ever created.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.auctions)
}

// Get returns a copy of the auction with the given id.
func (r *Registry) Get(id uint64) (Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id >= uint64(len(r.auctions)) {
		return Auction{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return r.auctions[id], nil
}

// Snapshot returns copies of all auctions, in id order.
func (r *Registry) Snapshot() []Auction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Auction, len(r.auctions))
	copy(out, r.auctions)
	return out
}

// Restore replaces the arena with previously persisted auctions. Ids index
// the arena directly; an id missing from items (a lost mirror write)
// becomes a closed placeholder slot so every surviving auction keeps its
// position. Used once at boot before the registry serves traffic.
func (r *Registry) Restore(items []Auction) error {
	var size uint64
	for _, a := range items {
		if a.ID+1 > size {
			size = a.ID + 1
		}
	}
	arena := make([]Auction, size)
	seen := make([]bool, size)
	for _, a := range items {
		if seen[a.ID] {
			return fmt.Errorf("restore: duplicate id %d", a.ID)
		}
		seen[a.ID] = true
		arena[a.ID] = a
	}
	for i := range arena {
		if !seen[i] {
			arena[i] = Auction{ID: uint64(i), Status: StatusStopped}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions = arena
	return nil
}

// Create validates pricing against the effective duration and appends a new
// auction. Ids are sequential from 0 and never reused.
func (r *Registry) Create(seller string, startingPrice, discountRate uint64, item string, duration uint64, now int64) (Auction, error) {
	effective := duration
	if effective == 0 {
		effective = DefaultDuration
	}
	// The check uses the effective duration so zero-duration auctions are
	// validated against the default window. Division form so the product
	// cannot wrap uint64 on extreme rates.
	if discountRate != 0 && startingPrice/discountRate < effective {
		return Auction{}, fmt.Errorf("starting price %d below %d*%d: %w",
			startingPrice, discountRate, effective, ErrInvalidPricing)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	a := Auction{
		ID:            uint64(len(r.auctions)),
		Seller:        seller,
		StartingPrice: startingPrice,
		DiscountRate:  discountRate,
		Item:          item,
		StartAt:       now,
		EndsAt:        now + int64(effective),
		Status:        StatusActive,
	}
	r.auctions = append(r.auctions, a)
	return a, nil
}

// CurrentPrice returns the decayed price of the auction at now.
func (r *Registry) CurrentPrice(id uint64, now int64) (uint64, error) {
	a, err := r.Get(id)
	if err != nil {
		return 0, err
	}
	return PriceAt(a, now), nil
}

// Buy settles a purchase. The stopped check precedes the expiry check, so a
// closed auction always reports ErrStopped even past its end time. On
// success the auction is marked sold before the caller performs any value
// transfer, which makes a second Buy on the same id fail with ErrStopped
// regardless of what happens to the transfers.
func (r *Registry) Buy(id uint64, offered uint64, buyer string, now int64) (Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id >= uint64(len(r.auctions)) {
		return Settlement{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	a := &r.auctions[id]
	if a.Closed() {
		return Settlement{}, ErrStopped
	}
	if now >= a.EndsAt {
		return Settlement{}, ErrExpired
	}
	price := PriceAt(*a, now)
	if offered < price {
		return Settlement{}, fmt.Errorf("offered %d, price %d: %w", offered, price, ErrInsufficientValue)
	}

	a.Status = StatusSold
	a.FinalPrice = price
	a.Buyer = buyer

	fee := price * r.feeRate / 100
	return Settlement{
		AuctionID:      id,
		Item:           a.Item,
		Seller:         a.Seller,
		Buyer:          buyer,
		Price:          price,
		Fee:            fee,
		SellerProceeds: price - fee,
		Refund:         offered - price,
		SettledAt:      now,
	}, nil
}

// Stop closes an unsold auction. Administrator only; no value moves and no
// final price is recorded.
func (r *Registry) Stop(id uint64, caller string) error {
	if caller != r.owner {
		return fmt.Errorf("caller %q: %w", caller, ErrNotAuthorized)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id >= uint64(len(r.auctions)) {
		return fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	a := &r.auctions[id]
	if a.Closed() {
		return ErrStopped
	}
	a.Status = StatusStopped
	return nil
}
