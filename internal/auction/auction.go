// Package auction implements the Dutch-auction registry: lifecycle,
// linear price decay, and settlement accounting.
//
// The registry is the system of record. Auctions live in a growable arena
// indexed by sequential ids starting at 0; time is supplied by callers as
// unix seconds and is assumed non-decreasing across mutating calls.
package auction

// Status is the lifecycle state of an auction. An auction closes exactly
// once, either by sale or by administrative stop.
type Status string

const (
	StatusActive  Status = "active"
	StatusSold    Status = "sold"
	StatusStopped Status = "stopped"
)

// DefaultDuration is applied when an auction is created with duration 0.
const DefaultDuration = 2 * 24 * 60 * 60 // 2 days in seconds

// Auction is a single listing. FinalPrice and Buyer are set only when
// Status is StatusSold; an administrative stop leaves both zero-valued.
type Auction struct {
	ID            uint64 `json:"id"`
	Seller        string `json:"seller"`
	StartingPrice uint64 `json:"starting_price"`
	DiscountRate  uint64 `json:"discount_rate"`
	Item          string `json:"item"`
	StartAt       int64  `json:"start_at"`
	EndsAt        int64  `json:"ends_at"`
	Status        Status `json:"status"`
	FinalPrice    uint64 `json:"final_price"`
	Buyer         string `json:"buyer,omitempty"`
}

// Closed reports whether the auction has reached a terminal state.
func (a Auction) Closed() bool {
	return a.Status != StatusActive
}

// Settlement is the accounting breakdown of a successful purchase.
// Fee + SellerProceeds always equals Price; Refund is the overpayment
// returned to the buyer.
type Settlement struct {
	AuctionID      uint64 `json:"auction_id"`
	Item           string `json:"item"`
	Seller         string `json:"seller"`
	Buyer          string `json:"buyer"`
	Price          uint64 `json:"price"`
	Fee            uint64 `json:"fee"`
	SellerProceeds uint64 `json:"seller_proceeds"`
	Refund         uint64 `json:"refund"`
	SettledAt      int64  `json:"settled_at"`
}

// PriceAt returns the decayed price of a at the given unix time. Pure:
// it never mutates and is callable on closed or expired auctions, so
// callers must check auction state separately before settling on it.
// Elapsed time before StartAt counts as zero and the result is floored
// at 0 once the accumulated discount covers the starting price.
func PriceAt(a Auction, now int64) uint64 {
	elapsed := now - a.StartAt
	if elapsed < 0 {
		elapsed = 0
	}
	if a.DiscountRate == 0 {
		return a.StartingPrice
	}
	// Division-form check keeps rate*elapsed from wrapping uint64.
	if uint64(elapsed) > a.StartingPrice/a.DiscountRate {
		return 0
	}
	discount := a.DiscountRate * uint64(elapsed)
	if discount >= a.StartingPrice {
		return 0
	}
	return a.StartingPrice - discount
}
